package license

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const fakeTypeID = "fake"

type fakeType struct {
	Base

	GrantFn  func(ctx context.Context, l *License) error
	RevokeFn func(ctx context.Context, l *License) error
	LabelFn  func(ctx context.Context, l *License) string
}

func (f *fakeType) ID() string    { return fakeTypeID }
func (f *fakeType) Label() string { return "Fake" }

func (f *fakeType) DefaultConfiguration() Configuration {
	return f.Base.DefaultConfiguration().Merge(Configuration{"target": "default"})
}

func (f *fakeType) SetConfigurationValuesOnLicense(l *License) {
	l.SetFieldValue("target", f.Configuration()["target"])
}

func (f *fakeType) GrantLicense(ctx context.Context, l *License) error {
	if f.GrantFn != nil {
		return f.GrantFn(ctx, l)
	}
	return nil
}

func (f *fakeType) RevokeLicense(ctx context.Context, l *License) error {
	if f.RevokeFn != nil {
		return f.RevokeFn(ctx, l)
	}
	return nil
}

func (f *fakeType) BuildLabel(ctx context.Context, l *License) string {
	if f.LabelFn != nil {
		return f.LabelFn(ctx, l)
	}
	return l.ProductVariationTitle
}

func (f *fakeType) BuildConfigurationForm() []FormElement {
	return []FormElement{{Name: "target", Type: "textfield", Title: "Target", DefaultValue: f.Configuration()["target"], Required: true}}
}

func (f *fakeType) SubmitConfigurationForm(values Configuration) (Configuration, error) {
	return ValidateForm(f.BuildConfigurationForm(), values)
}

func (f *fakeType) BuildFieldDefinitions() []FieldDefinition {
	return []FieldDefinition{{Name: "target", Type: "string", Label: "Target", Cardinality: 1, Required: true}}
}

type mockEnqueuer struct {
	EnqueueFn func(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.EnqueueFn != nil {
		return m.EnqueueFn(ctx, task, opts...)
	}
	return &asynq.TaskInfo{}, nil
}

type mockRepository struct {
	Repository

	GetTypeConfigFn  func(ctx context.Context, typeID string) (*TypeConfig, error)
	SaveTypeConfigFn func(ctx context.Context, cfg *TypeConfig) error
}

func (m *mockRepository) GetTypeConfig(ctx context.Context, typeID string) (*TypeConfig, error) {
	if m.GetTypeConfigFn != nil {
		return m.GetTypeConfigFn(ctx, typeID)
	}
	return m.Repository.GetTypeConfig(ctx, typeID)
}

func (m *mockRepository) SaveTypeConfig(ctx context.Context, cfg *TypeConfig) error {
	if m.SaveTypeConfigFn != nil {
		return m.SaveTypeConfigFn(ctx, cfg)
	}
	return m.Repository.SaveTypeConfig(ctx, cfg)
}
