package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	repo      Repository
	node      *snowflake.Node
	chain     Chain
	messenger messenger.Messenger
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Node       *snowflake.Node
	Chain      Chain
	Messenger  messenger.Messenger
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:      p.Repository,
		node:      p.Node,
		chain:     p.Chain,
		messenger: p.Messenger,
	}
}

type CreateOrderRequest struct {
	CustomerID string `json:"customer_id"`
}

type AddItemRequest struct {
	Bundle            Bundle  `json:"bundle"`
	Title             string  `json:"title"`
	PurchasedEntityID string  `json:"purchased_entity_id"`
	Quantity          int     `json:"quantity"`
	LicenseID         *string `json:"license_id,omitempty"`
	TargetEntityID    *string `json:"target_entity_id,omitempty"`
}

func traceLogger(ctx context.Context) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	now := time.Now().UTC()
	o := &Order{
		ID:         s.node.Generate().String(),
		CreatedAt:  now,
		UpdatedAt:  now,
		CustomerID: req.CustomerID,
		State:      Draft,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		traceLogger(ctx).Error("failed to create order", zap.Error(err))
		return nil, errutil.Internal("failed to create order", err)
	}

	o.Items = []*OrderItem{}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errutil.BadRequest("order_id is required", nil)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, errutil.NotFound("order not found", err)
	}
	if err != nil {
		traceLogger(ctx).Error("failed to get order", zap.Error(err), zap.String("order_id", orderID))
		return nil, errutil.Internal("failed to get order", err)
	}
	return o, nil
}

// AddItem adds an item to a draft order, reports it to the customer and
// recalculates the order.
func (s *Service) AddItem(ctx context.Context, orderID string, req AddItemRequest) (*Order, error) {
	if req.Bundle == "" {
		req.Bundle = Default
	}
	if req.Bundle.String() == "" {
		return nil, errutil.BadRequest("unknown order item bundle", nil, errutil.WithDetails(errutil.Detail{Field: "bundle", Message: "must be one of default, license, pay_to_publish"}))
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, errutil.BadRequest("title is required", nil)
	}
	if req.Quantity < 0 {
		return nil, errutil.BadRequest("quantity must not be negative", nil)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Bundle == PayToPublish && (req.TargetEntityID == nil || *req.TargetEntityID == "") {
		return nil, errutil.BadRequest("target_entity_id is required for pay to publish items", nil)
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.State != Draft {
		return nil, errutil.Conflict("order is not a cart", nil)
	}

	now := time.Now().UTC()
	item := &OrderItem{
		ID:                s.node.Generate().String(),
		CreatedAt:         now,
		UpdatedAt:         now,
		OrderID:           o.ID,
		Bundle:            req.Bundle,
		Title:             req.Title,
		PurchasedEntityID: req.PurchasedEntityID,
		Quantity:          req.Quantity,
	}
	if req.Bundle.HasLicenseField() {
		item.LicenseID = req.LicenseID
	}
	if req.Bundle == PayToPublish {
		item.TargetEntityID = req.TargetEntityID
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		traceLogger(ctx).Error("failed to add order item", zap.Error(err), zap.String("order_id", o.ID))
		return nil, errutil.Internal("failed to add order item", err)
	}

	s.messenger.Add(ctx, CartMessage(item), messenger.Status)

	return s.Recalculate(ctx, o.ID)
}

// Recalculate runs the processor chain over the order and persists the
// quantities it changed.
func (s *Service) Recalculate(ctx context.Context, orderID string) (*Order, error) {
	zapLog := traceLogger(ctx).With(zap.String("order_id", orderID))

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	before := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		before[item.ID] = item.Quantity
	}

	if err := s.chain.Process(ctx, o); err != nil {
		zapLog.Error("order processing failed", zap.Error(err))
		return nil, errutil.Internal("failed to process order", err)
	}

	changed := make([]*OrderItem, 0)
	for _, item := range o.Items {
		if before[item.ID] != item.Quantity {
			changed = append(changed, item)
		}
	}

	if len(changed) > 0 {
		if err := s.repo.UpdateQuantities(ctx, changed); err != nil {
			zapLog.Error("failed to persist order item quantities", zap.Error(err))
			return nil, errutil.Internal("failed to update order items", err)
		}
		zapLog.Info("order item quantities adjusted", zap.Int("items", len(changed)))
	}

	return o, nil
}
