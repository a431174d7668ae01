package paytopublish

import (
	"context"
	"errors"
	"fmt"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/license"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	TypeID    = "commerce_license_pay_to_publish"
	TypeLabel = "Pay to Publish"

	TargetFieldKey = "license_target_field"
	TargetValueKey = "license_target_value"

	defaultTargetField = "field_pay_to_publish"
	defaultTargetValue = "2"
)

type TargetResolver interface {
	Resolve(ctx context.Context, licenseID string) (*entity.Entity, error)
}

// TargetStore persists listings and describes their fields.
type TargetStore interface {
	Save(ctx context.Context, e *entity.Entity) error
	FieldDefinitions(ctx context.Context, entityType, bundle string) (map[string]*entity.FieldDefinition, error)
}

// LicenseType sets a configured value on a listing field while the license
// is active and restores the field default once it is revoked.
type LicenseType struct {
	license.Base

	resolver TargetResolver
	store    TargetStore
	metrics  *Metrics

	// granted holds the target each grant resolved until BuildLabel consumes
	// it. A nil entry records that no target was found.
	granted map[string]*entity.Entity
}

func NewLicenseType(resolver TargetResolver, store TargetStore, metrics *Metrics) *LicenseType {
	return &LicenseType{resolver: resolver, store: store, metrics: metrics}
}

func (t *LicenseType) ID() string    { return TypeID }
func (t *LicenseType) Label() string { return TypeLabel }

func (t *LicenseType) DefaultConfiguration() license.Configuration {
	return t.Base.DefaultConfiguration().Merge(license.Configuration{
		TargetFieldKey: defaultTargetField,
		TargetValueKey: defaultTargetValue,
	})
}

// SetConfigurationValuesOnLicense snapshots the configured target field and
// value onto l.
func (t *LicenseType) SetConfigurationValuesOnLicense(l *license.License) {
	cfg := t.Configuration()
	l.SetFieldValue(TargetFieldKey, cfg[TargetFieldKey])
	l.SetFieldValue(TargetValueKey, cfg[TargetValueKey])
}

// BuildLabel reuses the target found by a preceding grant of l on this
// instance and resolves it otherwise.
func (t *LicenseType) BuildLabel(ctx context.Context, l *license.License) string {
	target, ok := t.granted[l.ID]
	if ok {
		delete(t.granted, l.ID)
	} else {
		var err error
		if target, err = t.resolver.Resolve(ctx, l.ID); err != nil {
			return l.ProductVariationTitle
		}
	}
	if target == nil {
		return l.ProductVariationTitle
	}
	return fmt.Sprintf("%s: %s", l.ProductVariationTitle, target.Label())
}

func (t *LicenseType) GrantLicense(ctx context.Context, l *license.License) error {
	zapLog := t.logger(ctx, l)

	target, def, err := t.prepare(ctx, l, opGrant)
	if err != nil {
		return err
	}
	if t.granted == nil {
		t.granted = map[string]*entity.Entity{}
	}
	t.granted[l.ID] = target
	if target == nil {
		return nil
	}

	value := l.FieldValue(TargetValueKey)
	if current, ok := target.FieldValue(def.FieldName); ok && current == value {
		t.metrics.observe(opGrant, outcomeUnchanged)
		return nil
	}

	target.SetFieldValue(def.FieldName, value)
	if err := t.save(ctx, target, opGrant); err != nil {
		return err
	}

	zapLog.Info("pay to publish value set on target",
		zap.String("target_entity_id", target.ID),
		zap.String("field", def.FieldName),
		zap.String("value", value),
	)
	return nil
}

func (t *LicenseType) RevokeLicense(ctx context.Context, l *license.License) error {
	zapLog := t.logger(ctx, l)

	target, def, err := t.prepare(ctx, l, opRevoke)
	if err != nil || target == nil {
		return err
	}

	current, isSet := target.FieldValue(def.FieldName)
	defaultValue, hasDefault := def.GetDefaultValue(target)
	switch {
	case hasDefault && isSet && current == defaultValue, !hasDefault && !isSet:
		t.metrics.observe(opRevoke, outcomeUnchanged)
		return nil
	case hasDefault:
		target.SetFieldValue(def.FieldName, defaultValue)
	default:
		target.ClearFieldValue(def.FieldName)
	}

	if err := t.save(ctx, target, opRevoke); err != nil {
		return err
	}

	zapLog.Info("pay to publish target field restored to default",
		zap.String("target_entity_id", target.ID),
		zap.String("field", def.FieldName),
		zap.Bool("has_default", hasDefault),
	)
	return nil
}

// prepare resolves the target of l and the definition of the licensed field.
// A nil target with a nil error means there is nothing to do.
func (t *LicenseType) prepare(ctx context.Context, l *license.License, operation string) (*entity.Entity, *entity.FieldDefinition, error) {
	target, err := t.resolver.Resolve(ctx, l.ID)
	if errors.Is(err, ErrTargetNotFound) {
		t.metrics.observe(operation, outcomeTargetNotFound)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errutil.Internal("failed to resolve pay to publish target", err)
	}

	field := l.FieldValue(TargetFieldKey)
	defs, err := t.store.FieldDefinitions(ctx, target.EntityType, target.Bundle)
	if err != nil {
		return nil, nil, errutil.Internal("failed to load target field definitions", err)
	}

	def, ok := defs[field]
	if field == "" || !ok {
		t.metrics.observe(operation, outcomeConfigurationError)
		t.logger(ctx, l).Error("license target field is not defined on target bundle",
			zap.String("field", field),
			zap.String("entity_type", target.EntityType),
			zap.String("bundle", target.Bundle),
		)
		return nil, nil, errutil.UnprocessableEntity("configuration error",
			fmt.Errorf("%w: %q on %s/%s", ErrMissingFieldDefinition, field, target.EntityType, target.Bundle),
			errutil.WithDetails(errutil.Detail{Field: TargetFieldKey, Message: "field does not exist on the target entity"}),
		)
	}

	return target, def, nil
}

func (t *LicenseType) save(ctx context.Context, target *entity.Entity, operation string) error {
	if err := t.store.Save(ctx, target); err != nil {
		t.metrics.observe(operation, outcomePersistFailure)
		zap.L().Error("failed to persist pay to publish target",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("target_entity_id", target.ID),
		)
		return errutil.Internal("failed to persist pay to publish target", err)
	}
	t.metrics.observe(operation, outcomeApplied)
	return nil
}

func (t *LicenseType) logger(ctx context.Context, l *license.License) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
		zap.String("license_id", l.ID),
	)
}

func (t *LicenseType) BuildConfigurationForm() []license.FormElement {
	cfg := t.Configuration()
	return []license.FormElement{
		{
			Name:         TargetFieldKey,
			Type:         "textfield",
			Title:        "Machine field name on target entity to control with license",
			Description:  "Machine name of the listing field this license controls, usually field_pay_to_publish. Publishing breaks if the field does not exist on the listing bundle.",
			DefaultValue: cfg[TargetFieldKey],
			Required:     true,
		},
		{
			Name:         TargetValueKey,
			Type:         "textfield",
			Title:        "Value to set on target field",
			Description:  "Stored machine value written to the field while the license is active. The field returns to its default on revocation. Use the option key, not its label.",
			DefaultValue: cfg[TargetValueKey],
			Required:     true,
		},
	}
}

func (t *LicenseType) SubmitConfigurationForm(values license.Configuration) (license.Configuration, error) {
	return license.ValidateForm(t.BuildConfigurationForm(), values)
}

func (t *LicenseType) BuildFieldDefinitions() []license.FieldDefinition {
	return append(t.Base.BuildFieldDefinitions(),
		license.FieldDefinition{
			Name:        TargetFieldKey,
			Type:        "string",
			Label:       "Target field name",
			Description: "Machine name of the listing field this license sets.",
			Cardinality: 1,
			Required:    true,
		},
		license.FieldDefinition{
			Name:        TargetValueKey,
			Type:        "string",
			Label:       "Target field value",
			Description: "Value written to the listing field while the license is active.",
			Cardinality: 1,
			Required:    true,
		},
	)
}
