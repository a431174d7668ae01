package order

import (
	"context"
	"sync"

	"smallbiznis-paytopublish/pkg/messenger"

	"go.uber.org/zap"
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

type mockRepository struct {
	CreateOrderFn          func(ctx context.Context, o *Order) error
	GetOrderFn             func(ctx context.Context, orderID string) (*Order, error)
	CreateItemFn           func(ctx context.Context, item *OrderItem) error
	UpdateQuantitiesFn     func(ctx context.Context, items []*OrderItem) error
	FindItemsByLicenseIDFn func(ctx context.Context, licenseID string) ([]OrderItem, error)
}

func (m *mockRepository) CreateOrder(ctx context.Context, o *Order) error {
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, o)
	}
	return nil
}

func (m *mockRepository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if m.GetOrderFn != nil {
		return m.GetOrderFn(ctx, orderID)
	}
	return nil, ErrOrderNotFound
}

func (m *mockRepository) CreateItem(ctx context.Context, item *OrderItem) error {
	if m.CreateItemFn != nil {
		return m.CreateItemFn(ctx, item)
	}
	return nil
}

func (m *mockRepository) UpdateQuantities(ctx context.Context, items []*OrderItem) error {
	if m.UpdateQuantitiesFn != nil {
		return m.UpdateQuantitiesFn(ctx, items)
	}
	return nil
}

func (m *mockRepository) FindItemsByLicenseID(ctx context.Context, licenseID string) ([]OrderItem, error) {
	if m.FindItemsByLicenseIDFn != nil {
		return m.FindItemsByLicenseIDFn(ctx, licenseID)
	}
	return nil, nil
}

func strPtr(s string) *string { return &s }
