package license

import (
	"context"
	"errors"
	"strings"
	"time"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/pkg/task"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service struct {
	repo     Repository
	registry *Registry
	node     *snowflake.Node
	enqueuer task.Enqueuer
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Registry   *Registry
	Node       *snowflake.Node
	Enqueuer   task.Enqueuer `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:     p.Repository,
		registry: p.Registry,
		node:     p.Node,
		enqueuer: p.Enqueuer,
	}
}

type CreateLicenseRequest struct {
	Type                  string `json:"type"`
	ProductVariationID    string `json:"product_variation_id"`
	ProductVariationTitle string `json:"product_variation_title"`
	OwnerID               string `json:"owner_id"`
}

type TypeSummary struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	ActivationOrderState string `json:"activation_order_state"`
}

func traceLogger(ctx context.Context) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// serviceError keeps errors already classified by a license type and
// classifies the rest as internal.
func serviceError(msg string, err error) error {
	var be errutil.BaseError
	if errors.As(err, &be) {
		return err
	}
	return errutil.Internal(msg, err)
}

// instance returns the license type typeID configured with its saved
// configuration.
func (s *Service) instance(ctx context.Context, typeID string) (Type, error) {
	var values Configuration
	cfg, err := s.repo.GetTypeConfig(ctx, typeID)
	switch {
	case err == nil:
		values = cfg.Values()
	case errors.Is(err, ErrTypeConfigNotFound):
	default:
		return nil, errutil.Internal("failed to load license type config", err)
	}

	t, err := s.registry.CreateInstance(typeID, values)
	if errors.Is(err, ErrUnknownType) {
		return nil, errutil.NotFound("license type not found", err)
	}
	if err != nil {
		return nil, errutil.Internal("failed to create license type", err)
	}
	return t, nil
}

func (s *Service) ListTypes() []TypeSummary {
	out := make([]TypeSummary, 0)
	for _, id := range s.registry.IDs() {
		t, err := s.registry.CreateInstance(id, nil)
		if err != nil {
			continue
		}
		out = append(out, TypeSummary{ID: t.ID(), Label: t.Label(), ActivationOrderState: t.ActivationOrderState()})
	}
	return out
}

// CreateLicense creates a pending license with its type configuration
// snapshotted onto it.
func (s *Service) CreateLicense(ctx context.Context, req CreateLicenseRequest) (*License, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, errutil.BadRequest("type is required", nil)
	}
	if strings.TrimSpace(req.ProductVariationID) == "" {
		return nil, errutil.BadRequest("product_variation_id is required", nil)
	}

	t, err := s.instance(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &License{
		ID:                    s.node.Generate().String(),
		CreatedAt:             now,
		UpdatedAt:             now,
		Type:                  t.ID(),
		ProductVariationID:    req.ProductVariationID,
		ProductVariationTitle: req.ProductVariationTitle,
		OwnerID:               req.OwnerID,
		State:                 Pending,
		Label:                 req.ProductVariationTitle,
		Fields:                datatypes.JSONMap{},
	}
	t.SetConfigurationValuesOnLicense(l)

	if err := s.repo.Create(ctx, l); err != nil {
		traceLogger(ctx).Error("failed to create license", zap.Error(err), zap.String("type", l.Type))
		return nil, errutil.Internal("failed to create license", err)
	}
	return l, nil
}

func (s *Service) GetLicense(ctx context.Context, id string) (*License, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.BadRequest("license_id is required", nil)
	}

	l, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrLicenseNotFound) {
		return nil, errutil.NotFound("license not found", err)
	}
	if err != nil {
		traceLogger(ctx).Error("failed to get license", zap.Error(err), zap.String("license_id", id))
		return nil, errutil.Internal("failed to get license", err)
	}
	return l, nil
}

// Grant applies the license through its type and marks it active. The state
// is left untouched when the type fails.
func (s *Service) Grant(ctx context.Context, id string) (*License, error) {
	l, err := s.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	zapLog := traceLogger(ctx).With(zap.String("license_id", l.ID), zap.String("type", l.Type))

	if l.State == Revoked || l.State == Expired {
		return nil, errutil.Conflict("license can no longer be granted", nil)
	}

	t, err := s.instance(ctx, l.Type)
	if err != nil {
		return nil, err
	}

	if err := t.GrantLicense(ctx, l); err != nil {
		zapLog.Error("failed to grant license", zap.Error(err))
		return nil, serviceError("failed to grant license", err)
	}

	now := time.Now().UTC()
	l.State = Active
	if l.GrantedAt == nil {
		l.GrantedAt = &now
	}
	l.Label = t.BuildLabel(ctx, l)
	l.UpdatedAt = now

	if err := s.repo.Update(ctx, l); err != nil {
		zapLog.Error("failed to update license", zap.Error(err))
		return nil, errutil.Internal("failed to update license", err)
	}

	zapLog.Info("license granted")
	return l, nil
}

// Revoke withdraws the license through its type and marks it revoked, or
// expired when expired is set. Licenses already revoked or expired are
// returned as is.
func (s *Service) Revoke(ctx context.Context, id string, expired bool) (*License, error) {
	l, err := s.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	zapLog := traceLogger(ctx).With(zap.String("license_id", l.ID), zap.String("type", l.Type))

	if l.State == Revoked || l.State == Expired {
		return l, nil
	}

	t, err := s.instance(ctx, l.Type)
	if err != nil {
		return nil, err
	}

	if err := t.RevokeLicense(ctx, l); err != nil {
		zapLog.Error("failed to revoke license", zap.Error(err))
		return nil, serviceError("failed to revoke license", err)
	}

	now := time.Now().UTC()
	l.State = Revoked
	if expired {
		l.State = Expired
	}
	l.RevokedAt = &now
	l.UpdatedAt = now

	if err := s.repo.Update(ctx, l); err != nil {
		zapLog.Error("failed to update license", zap.Error(err))
		return nil, errutil.Internal("failed to update license", err)
	}

	zapLog.Info("license revoked", zap.String("state", l.State.String()))
	return l, nil
}

// Relabel recomputes the license label from its type.
func (s *Service) Relabel(ctx context.Context, id string) (*License, error) {
	l, err := s.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.instance(ctx, l.Type)
	if err != nil {
		return nil, err
	}

	label := t.BuildLabel(ctx, l)
	if label == l.Label {
		return l, nil
	}

	l.Label = label
	l.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, errutil.Internal("failed to update license", err)
	}
	return l, nil
}

// ScheduleGrant hands the grant of a license to the background worker.
func (s *Service) ScheduleGrant(ctx context.Context, id string) (*License, error) {
	return s.schedule(ctx, id, func(p LicensePayload) error {
		t, err := NewGrantTask(p)
		if err != nil {
			return err
		}
		_, err = s.enqueuer.Enqueue(ctx, t)
		return err
	})
}

// ScheduleRevoke hands the revocation of a license to the background worker.
func (s *Service) ScheduleRevoke(ctx context.Context, id string, expired bool) (*License, error) {
	return s.schedule(ctx, id, func(p LicensePayload) error {
		p.Expired = expired
		t, err := NewRevokeTask(p)
		if err != nil {
			return err
		}
		_, err = s.enqueuer.Enqueue(ctx, t)
		return err
	})
}

func (s *Service) schedule(ctx context.Context, id string, enqueue func(LicensePayload) error) (*License, error) {
	if s.enqueuer == nil {
		return nil, errutil.ServiceUnavailable("background worker is not configured", nil)
	}

	l, err := s.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	payload := LicensePayload{LicenseID: l.ID, TraceID: sc.TraceID().String()}
	if err := enqueue(payload); err != nil {
		traceLogger(ctx).Error("failed to enqueue license task", zap.Error(err), zap.String("license_id", l.ID))
		return nil, errutil.ServiceUnavailable("failed to schedule license task", err)
	}
	return l, nil
}

func (s *Service) TypeForm(ctx context.Context, typeID string) ([]FormElement, error) {
	t, err := s.instance(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return t.BuildConfigurationForm(), nil
}

func (s *Service) TypeFields(ctx context.Context, typeID string) ([]FieldDefinition, error) {
	t, err := s.instance(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return t.BuildFieldDefinitions(), nil
}

// SaveTypeConfig validates values through the type's configuration form and
// stores them. Licenses created earlier keep their snapshot.
func (s *Service) SaveTypeConfig(ctx context.Context, typeID string, values Configuration) (*TypeConfig, error) {
	t, err := s.instance(ctx, typeID)
	if err != nil {
		return nil, err
	}

	validated, err := t.SubmitConfigurationForm(values)
	if err != nil {
		return nil, err
	}

	stored := make(datatypes.JSONMap, len(validated))
	for k, v := range validated {
		stored[k] = v
	}

	now := time.Now().UTC()
	cfg := &TypeConfig{
		ID:            s.node.Generate().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Type:          t.ID(),
		Configuration: stored,
	}
	if err := s.repo.SaveTypeConfig(ctx, cfg); err != nil {
		traceLogger(ctx).Error("failed to save license type config", zap.Error(err), zap.String("type", typeID))
		return nil, errutil.Internal("failed to save license type config", err)
	}

	saved, err := s.repo.GetTypeConfig(ctx, t.ID())
	if err != nil {
		traceLogger(ctx).Error("failed to load license type config", zap.Error(err), zap.String("type", typeID))
		return nil, errutil.Internal("failed to load license type config", err)
	}
	return saved, nil
}
