package paytopublish

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smallbiznis-paytopublish/pkg/messenger"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/order"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LineItemFinder looks up order items by the license they reference.
type LineItemFinder interface {
	FindItemsByLicenseID(ctx context.Context, licenseID string) ([]order.OrderItem, error)
}

type EntityLoader interface {
	Load(ctx context.Context, id string) (*entity.Entity, error)
}

// Resolver finds the listing a pay to publish license applies to by way of
// the order item that references the license.
type Resolver struct {
	items     LineItemFinder
	entities  EntityLoader
	messenger messenger.Messenger
	metrics   *Metrics
}

func NewResolver(items LineItemFinder, entities EntityLoader, m messenger.Messenger, metrics *Metrics) *Resolver {
	return &Resolver{items: items, entities: entities, messenger: m, metrics: metrics}
}

func notFoundMessage(licenseID string) string {
	return fmt.Sprintf("Unable to load pay to publish target entity for license id %s.", licenseID)
}

// Resolve returns the target entity of licenseID. It returns
// ErrTargetNotFound, after notifying the user, when no order item references
// the license or the referenced entity cannot be loaded. When several items
// reference the license the earliest created one wins.
func (r *Resolver) Resolve(ctx context.Context, licenseID string) (*entity.Entity, error) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	zapLog := zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
		zap.String("license_id", licenseID),
	)

	items, err := r.items.FindItemsByLicenseID(ctx, licenseID)
	if err != nil {
		zapLog.Error("failed to query order items for license", zap.Error(err))
		return nil, fmt.Errorf("find order items for license %s: %w", licenseID, err)
	}

	if len(items) == 0 {
		return nil, r.notFound(ctx, zapLog, licenseID, "no order item references license")
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	if len(items) > 1 {
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		zapLog.Warn("license is referenced by more than one order item, using the earliest",
			zap.Strings("order_item_ids", ids),
			zap.String("selected_order_item_id", items[0].ID),
		)
		r.metrics.ambiguous()
		r.messenger.Add(ctx, fmt.Sprintf("License id %s is referenced by more than one order item.", licenseID), messenger.Warning)
	}

	item := items[0]
	targetID, ok := item.TargetEntityReference()
	if !ok {
		return nil, r.notFound(ctx, zapLog.With(zap.String("order_item_id", item.ID)), licenseID, "order item has no target entity")
	}

	target, err := r.entities.Load(ctx, targetID)
	if errors.Is(err, entity.ErrEntityNotFound) {
		return nil, r.notFound(ctx, zapLog.With(zap.String("target_entity_id", targetID)), licenseID, "target entity does not exist")
	}
	if err != nil {
		zapLog.Error("failed to load target entity", zap.Error(err), zap.String("target_entity_id", targetID))
		return nil, fmt.Errorf("load target entity %s: %w", targetID, err)
	}

	return target, nil
}

func (r *Resolver) notFound(ctx context.Context, zapLog *zap.Logger, licenseID, reason string) error {
	zapLog.Info("pay to publish target not resolved", zap.String("reason", reason))
	r.messenger.Add(ctx, notFoundMessage(licenseID), messenger.Error)
	return ErrTargetNotFound
}
