package order

import (
	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/db"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("order.module",
	fx.Provide(
		NewRepository,
		NewQuantityGuard,
		NewChain,
		NewService,
	),
	fx.Invoke(migrate),
)

var ServerModule = fx.Module("order.server",
	Module,
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

func migrate(cfg *config.Config, gdb *gorm.DB) error {
	return db.Migrate(cfg, gdb, &Order{}, &OrderItem{})
}

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}
