package order

import (
	"context"
	"errors"
	"testing"

	"smallbiznis-paytopublish/pkg/messenger"

	"github.com/stretchr/testify/require"
)

func TestQuantityGuardClampsLicenseItems(t *testing.T) {
	m := &recordingMessenger{}
	guard := NewQuantityGuard(m)

	o := &Order{Items: []*OrderItem{
		{ID: "1", Bundle: License, Title: "Gold Membership", Quantity: 3, LicenseID: strPtr("lic-1")},
	}}

	require.NoError(t, guard.Process(context.Background(), o))
	require.Equal(t, 1, o.Items[0].Quantity)

	msgs := m.all()
	require.Len(t, msgs, 1)
	require.Equal(t, "You may only have one of Gold Membership in your cart.", msgs[0].Text)
	require.Equal(t, messenger.Error, msgs[0].Severity)
}

func TestQuantityGuardSkipsPayToPublishAndPlainItems(t *testing.T) {
	m := &recordingMessenger{}
	guard := NewQuantityGuard(m)

	o := &Order{Items: []*OrderItem{
		{ID: "1", Bundle: PayToPublish, Title: "Featured listing", Quantity: 3, TargetEntityID: strPtr("node-1")},
		{ID: "2", Bundle: Default, Title: "T-shirt", Quantity: 4},
	}}

	require.NoError(t, guard.Process(context.Background(), o))
	require.Equal(t, 3, o.Items[0].Quantity)
	require.Equal(t, 4, o.Items[1].Quantity)
	require.Empty(t, m.all())
}

func TestQuantityGuardIsIdempotent(t *testing.T) {
	m := &recordingMessenger{}
	guard := NewQuantityGuard(m)

	o := &Order{Items: []*OrderItem{
		{ID: "1", Bundle: License, Title: "Gold Membership", Quantity: 2},
		{ID: "2", Bundle: License, Title: "Silver Membership", Quantity: 1},
	}}

	require.NoError(t, guard.Process(context.Background(), o))
	require.NoError(t, guard.Process(context.Background(), o))

	require.Equal(t, 1, o.Items[0].Quantity)
	require.Equal(t, 1, o.Items[1].Quantity)
	require.Len(t, m.all(), 1)
}

func TestChainStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string

	chain := Chain{
		ProcessorFunc(func(ctx context.Context, o *Order) error {
			calls = append(calls, "first")
			return boom
		}),
		ProcessorFunc(func(ctx context.Context, o *Order) error {
			calls = append(calls, "second")
			return nil
		}),
	}

	err := chain.Process(context.Background(), &Order{})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"first"}, calls)
}

func TestCartMessage(t *testing.T) {
	require.Equal(t, "Gold Membership added to your cart.", CartMessage(&OrderItem{Bundle: License, Title: "Gold Membership"}))
	require.Equal(t, "Listing option for Featured added to your cart.", CartMessage(&OrderItem{Bundle: PayToPublish, Title: "Featured"}))
}
