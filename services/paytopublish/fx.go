package paytopublish

import (
	"smallbiznis-paytopublish/pkg/messenger"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/license"
	"smallbiznis-paytopublish/services/order"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module registers the pay to publish license type. It expects the entity,
// order and license modules in the same application.
var Module = fx.Module("paytopublish",
	fx.Provide(
		fx.Private,
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
	),
	fx.Provide(
		NewMetrics,
		newResolver,
	),
	fx.Invoke(register),
)

func newResolver(repo order.Repository, store entity.Store, m messenger.Messenger, metrics *Metrics) *Resolver {
	return NewResolver(repo, store, m, metrics)
}

func register(registry *license.Registry, resolver *Resolver, store entity.Store, metrics *Metrics) error {
	return registry.Register(TypeID, func() license.Type {
		return NewLicenseType(resolver, store, metrics)
	})
}
