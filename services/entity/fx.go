package entity

import (
	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/db"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("entity.store",
	fx.Provide(NewStore),
	fx.Invoke(migrate),
)

func migrate(cfg *config.Config, gdb *gorm.DB) error {
	return db.Migrate(cfg, gdb, &Entity{}, &FieldDefinition{})
}
