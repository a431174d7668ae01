package license

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLicenseNotFound    = errors.New("license not found")
	ErrTypeConfigNotFound = errors.New("license type config not found")
)

// Repository describes database operations available for licenses.
type Repository interface {
	Create(ctx context.Context, l *License) error
	Get(ctx context.Context, id string) (*License, error)
	Update(ctx context.Context, l *License) error
	GetTypeConfig(ctx context.Context, typeID string) (*TypeConfig, error)
	SaveTypeConfig(ctx context.Context, cfg *TypeConfig) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, l *License) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *gormRepository) Get(ctx context.Context, id string) (*License, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var l License
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *gormRepository) Update(ctx context.Context, l *License) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).
		Model(&License{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"state":      l.State,
			"label":      l.Label,
			"fields":     l.Fields,
			"granted_at": l.GrantedAt,
			"revoked_at": l.RevokedAt,
			"updated_at": l.UpdatedAt,
		}).Error
}

func (r *gormRepository) GetTypeConfig(ctx context.Context, typeID string) (*TypeConfig, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var cfg TypeConfig
	err := r.db.WithContext(ctx).Where("type = ?", typeID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTypeConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) SaveTypeConfig(ctx context.Context, cfg *TypeConfig) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"configuration", "updated_at"}),
	}).Create(cfg).Error
}
