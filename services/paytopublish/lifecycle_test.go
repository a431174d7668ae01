package paytopublish

import (
	"context"
	"testing"
	"time"

	"smallbiznis-paytopublish/pkg/errutil"
	"smallbiznis-paytopublish/services/license"
	"smallbiznis-paytopublish/services/testutil"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newLicenseService(t *testing.T, f *fixture) *license.Service {
	t.Helper()

	return license.NewService(license.ServiceParams{
		Repository: license.NewRepository(f.db),
		Registry:   f.registry,
		Node:       testutil.NewNode(t),
	})
}

func TestLicenseLifecycleDrivesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newLicenseService(t, f)

	_, err := svc.SaveTypeConfig(ctx, TypeID, license.Configuration{TargetFieldKey: "field_visible", TargetValueKey: "1"})
	require.NoError(t, err)

	l, err := svc.CreateLicense(ctx, license.CreateLicenseRequest{
		Type:                  TypeID,
		ProductVariationID:    "pv-1",
		ProductVariationTitle: "Featured",
		OwnerID:               "u-1",
	})
	require.NoError(t, err)
	require.Equal(t, "field_visible", l.FieldValue(TargetFieldKey))
	require.Equal(t, "1", l.FieldValue(TargetValueKey))

	listing := f.listing("My listing")
	f.item("item-1", l.ID, listing, time.Now().UTC())

	l, err = svc.Grant(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, license.Active, l.State)
	require.Equal(t, "Featured: My listing", l.Label)
	v, _ := f.reload(listing).FieldValue("field_visible")
	require.Equal(t, "1", v)

	l, err = svc.Revoke(ctx, l.ID, true)
	require.NoError(t, err)
	require.Equal(t, license.Expired, l.State)
	v, _ = f.reload(listing).FieldValue("field_visible")
	require.Equal(t, "0", v)
}

func TestLicenseLifecycleConfigurationErrorKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newLicenseService(t, f)

	_, err := svc.SaveTypeConfig(ctx, TypeID, license.Configuration{TargetFieldKey: "field_missing", TargetValueKey: "1"})
	require.NoError(t, err)

	l, err := svc.CreateLicense(ctx, license.CreateLicenseRequest{Type: TypeID, ProductVariationID: "pv-1", ProductVariationTitle: "Featured"})
	require.NoError(t, err)

	listing := f.listing("My listing")
	f.item("item-1", l.ID, listing, time.Now().UTC())

	_, err = svc.Grant(ctx, l.ID)
	require.Equal(t, errutil.StatusUnprocessableEntity, errutil.Code(err))

	stored, err := svc.GetLicense(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, license.Pending, stored.State)
}

func TestLicenseGrantResolvesAmbiguousTargetOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newLicenseService(t, f)

	_, err := svc.SaveTypeConfig(ctx, TypeID, visibleConfig)
	require.NoError(t, err)

	l, err := svc.CreateLicense(ctx, license.CreateLicenseRequest{Type: TypeID, ProductVariationID: "pv-1", ProductVariationTitle: "Featured"})
	require.NoError(t, err)

	first := f.listing("First")
	second := f.listing("Second")
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.item("item-1", l.ID, first, base)
	f.item("item-2", l.ID, second, base.Add(time.Second))

	before := promtestutil.ToFloat64(f.metrics.AmbiguousTargets)

	l, err = svc.Grant(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, "Featured: First", l.Label)
	require.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.AmbiguousTargets)-before)
	require.Len(t, f.messenger.all(), 1)

	v, _ := f.reload(first).FieldValue("field_visible")
	require.Equal(t, "1", v)
	v, _ = f.reload(second).FieldValue("field_visible")
	require.Equal(t, "0", v)
}
