package paytopublish

import (
	"context"
	"sync"
	"testing"
	"time"

	"smallbiznis-paytopublish/pkg/messenger"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/license"
	"smallbiznis-paytopublish/services/order"
	"smallbiznis-paytopublish/services/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type recordingMessenger struct {
	mu       sync.Mutex
	messages []messenger.Message
}

func (m *recordingMessenger) Add(_ context.Context, text string, severity messenger.Severity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messenger.Message{Text: text, Severity: severity})
}

func (m *recordingMessenger) all() []messenger.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]messenger.Message(nil), m.messages...)
}

type mockStore struct {
	entity.Store

	SaveFn             func(ctx context.Context, e *entity.Entity) error
	FieldDefinitionsFn func(ctx context.Context, entityType, bundle string) (map[string]*entity.FieldDefinition, error)
}

func (m *mockStore) Save(ctx context.Context, e *entity.Entity) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return m.Store.Save(ctx, e)
}

func (m *mockStore) FieldDefinitions(ctx context.Context, entityType, bundle string) (map[string]*entity.FieldDefinition, error) {
	if m.FieldDefinitionsFn != nil {
		return m.FieldDefinitionsFn(ctx, entityType, bundle)
	}
	return m.Store.FieldDefinitions(ctx, entityType, bundle)
}

func strPtr(s string) *string { return &s }

type fixture struct {
	t         *testing.T
	db        *gorm.DB
	store     entity.Store
	orders    order.Repository
	messenger *recordingMessenger
	metrics   *Metrics
	resolver  *Resolver
	registry  *license.Registry
	order     *order.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t, &entity.Entity{}, &entity.FieldDefinition{}, &order.Order{}, &order.OrderItem{}, &license.License{}, &license.TypeConfig{})
	node := testutil.NewNode(t)

	f := &fixture{
		t:         t,
		db:        db,
		store:     entity.NewStore(db, node),
		orders:    order.NewRepository(db),
		messenger: &recordingMessenger{},
		metrics:   NewMetrics(prometheus.NewRegistry()),
		registry:  license.NewRegistry(),
	}
	f.resolver = NewResolver(f.orders, f.store, f.messenger, f.metrics)
	require.NoError(t, register(f.registry, f.resolver, f.store, f.metrics))

	now := time.Now().UTC()
	f.order = &order.Order{ID: node.Generate().String(), CreatedAt: now, UpdatedAt: now, State: order.Draft}
	require.NoError(t, f.orders.CreateOrder(context.Background(), f.order))

	return f
}

// listing creates an article with a field_visible field defaulting to "0".
func (f *fixture) listing(title string) *entity.Entity {
	f.t.Helper()
	ctx := context.Background()

	defs, err := f.store.FieldDefinitions(ctx, "node", "article")
	require.NoError(f.t, err)
	if _, ok := defs["field_visible"]; !ok {
		require.NoError(f.t, f.store.CreateFieldDefinition(ctx, &entity.FieldDefinition{
			EntityType:   "node",
			Bundle:       "article",
			FieldName:    "field_visible",
			FieldType:    "list_integer",
			Label:        "Visible",
			DefaultValue: strPtr("0"),
		}))
	}

	e := &entity.Entity{EntityType: "node", Bundle: "article", Title: title}
	e.SetFieldValue("field_visible", "0")
	require.NoError(f.t, f.store.Create(ctx, e))
	return e
}

func (f *fixture) item(id, licenseID string, target *entity.Entity, createdAt time.Time) {
	f.t.Helper()

	item := &order.OrderItem{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		OrderID:   f.order.ID,
		Bundle:    order.PayToPublish,
		Title:     "Featured",
		Quantity:  1,
		LicenseID: strPtr(licenseID),
	}
	if target != nil {
		item.TargetEntityID = strPtr(target.ID)
	}
	require.NoError(f.t, f.orders.CreateItem(context.Background(), item))
}

func (f *fixture) licenseType(cfg license.Configuration) *LicenseType {
	f.t.Helper()

	inst, err := f.registry.CreateInstance(TypeID, cfg)
	require.NoError(f.t, err)
	return inst.(*LicenseType)
}

func (f *fixture) newLicense(id string, cfg license.Configuration) (*LicenseType, *license.License) {
	f.t.Helper()

	lt := f.licenseType(cfg)
	l := &license.License{ID: id, Type: TypeID, ProductVariationTitle: "Featured", State: license.Pending}
	lt.SetConfigurationValuesOnLicense(l)
	return lt, l
}

func (f *fixture) reload(e *entity.Entity) *entity.Entity {
	f.t.Helper()

	out, err := f.store.Load(context.Background(), e.ID)
	require.NoError(f.t, err)
	return out
}

var visibleConfig = license.Configuration{TargetFieldKey: "field_visible", TargetValueKey: "1"}
