package main

import (
	"log"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/db"
	"smallbiznis-paytopublish/pkg/gen"
	"smallbiznis-paytopublish/pkg/health"
	"smallbiznis-paytopublish/pkg/httpapi"
	"smallbiznis-paytopublish/pkg/logger"
	"smallbiznis-paytopublish/pkg/messenger"
	"smallbiznis-paytopublish/pkg/otelcol"
	"smallbiznis-paytopublish/pkg/profiling"
	"smallbiznis-paytopublish/pkg/redis"
	"smallbiznis-paytopublish/pkg/server"
	"smallbiznis-paytopublish/pkg/task"
	"smallbiznis-paytopublish/services/entity"
	"smallbiznis-paytopublish/services/license"
	"smallbiznis-paytopublish/services/order"
	"smallbiznis-paytopublish/services/paytopublish"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		task.Client,
		messenger.Module,
		health.Module,
		gen.Module,
		server.ProvideHTTPServer,
		httpapi.Module,
		entity.Module,
		order.ServerModule,
		license.ServerModule,
		paytopublish.Module,
		fxLogger,
	}

	if _, ok := os.LookupEnv("VAULT_ADDR"); ok {
		opts = append(opts, config.VaultModule)
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.AppEnv == "production" {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})
