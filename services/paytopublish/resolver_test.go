package paytopublish

import (
	"context"
	"errors"
	"testing"
	"time"

	"smallbiznis-paytopublish/pkg/messenger"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/order"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type finderFunc func(ctx context.Context, licenseID string) ([]order.OrderItem, error)

func (f finderFunc) FindItemsByLicenseID(ctx context.Context, licenseID string) ([]order.OrderItem, error) {
	return f(ctx, licenseID)
}

func TestResolverResolvesTarget(t *testing.T) {
	f := newFixture(t)
	listing := f.listing("My listing")
	f.item("item-1", "lic-1", listing, time.Now().UTC())

	target, err := f.resolver.Resolve(context.Background(), "lic-1")
	require.NoError(t, err)
	require.Equal(t, listing.ID, target.ID)
	require.Empty(t, f.messenger.all())
}

func TestResolverNotFoundNotifies(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), "lic-404")
	require.ErrorIs(t, err, ErrTargetNotFound)
	require.Equal(t, []messenger.Message{{
		Text:     "Unable to load pay to publish target entity for license id lic-404.",
		Severity: messenger.Error,
	}}, f.messenger.all())
}

func TestResolverItemWithoutTarget(t *testing.T) {
	f := newFixture(t)
	f.item("item-1", "lic-1", nil, time.Now().UTC())

	_, err := f.resolver.Resolve(context.Background(), "lic-1")
	require.ErrorIs(t, err, ErrTargetNotFound)
	require.Len(t, f.messenger.all(), 1)
}

func TestResolverMissingEntity(t *testing.T) {
	f := newFixture(t)
	gone := &entity.Entity{ID: "deleted"}
	f.item("item-1", "lic-1", gone, time.Now().UTC())

	_, err := f.resolver.Resolve(context.Background(), "lic-1")
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestResolverAmbiguousPicksEarliest(t *testing.T) {
	f := newFixture(t)
	first := f.listing("First")
	second := f.listing("Second")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.item("item-b", "lic-1", second, base.Add(time.Minute))
	f.item("item-a", "lic-1", first, base)

	for i := 0; i < 3; i++ {
		target, err := f.resolver.Resolve(context.Background(), "lic-1")
		require.NoError(t, err)
		require.Equal(t, first.ID, target.ID)
	}

	msgs := f.messenger.all()
	require.Len(t, msgs, 3)
	for _, msg := range msgs {
		require.Equal(t, messenger.Warning, msg.Severity)
	}
	require.Equal(t, float64(3), promtestutil.ToFloat64(f.metrics.AmbiguousTargets))
}

func TestResolverAmbiguousTieBrokenByID(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finder := finderFunc(func(ctx context.Context, licenseID string) ([]order.OrderItem, error) {
		return []order.OrderItem{
			{ID: "b", CreatedAt: at, TargetEntityID: strPtr("e-b")},
			{ID: "a", CreatedAt: at, TargetEntityID: strPtr("e-a")},
		}, nil
	})

	var loaded string
	loader := loaderFunc(func(ctx context.Context, id string) (*entity.Entity, error) {
		loaded = id
		return &entity.Entity{ID: id}, nil
	})

	r := NewResolver(finder, loader, &recordingMessenger{}, nil)
	_, err := r.Resolve(context.Background(), "lic-1")
	require.NoError(t, err)
	require.Equal(t, "e-a", loaded)
}

func TestResolverQueryFailure(t *testing.T) {
	boom := errors.New("db down")
	finder := finderFunc(func(ctx context.Context, licenseID string) ([]order.OrderItem, error) {
		return nil, boom
	})

	m := &recordingMessenger{}
	r := NewResolver(finder, nil, m, nil)
	_, err := r.Resolve(context.Background(), "lic-1")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrTargetNotFound)
	require.Empty(t, m.all())
}

type loaderFunc func(ctx context.Context, id string) (*entity.Entity, error)

func (f loaderFunc) Load(ctx context.Context, id string) (*entity.Entity, error) {
	return f(ctx, id)
}
