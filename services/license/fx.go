package license

import (
	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("license.module",
	fx.Provide(
		NewRegistry,
		NewRepository,
		NewService,
	),
	fx.Invoke(migrate),
)

var ServerModule = fx.Module("license.server",
	Module,
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

var TaskModule = fx.Module("license.task",
	Module,
	fx.Provide(NewTask),
	fx.Invoke(registerTaskHandlers),
)

func migrate(cfg *config.Config, gdb *gorm.DB) error {
	return db.Migrate(cfg, gdb, &License{}, &TypeConfig{})
}

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}

func registerTaskHandlers(mux *asynq.ServeMux, t *Task) {
	mux.HandleFunc(TaskLicenseGrant, t.HandleGrantTask)
	mux.HandleFunc(TaskLicenseRevoke, t.HandleRevokeTask)
}
