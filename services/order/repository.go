package order

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository describes database operations available for orders.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CreateItem(ctx context.Context, item *OrderItem) error
	UpdateQuantities(ctx context.Context, items []*OrderItem) error
	FindItemsByLicenseID(ctx context.Context, licenseID string) ([]OrderItem, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateOrder(ctx context.Context, o *Order) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *gormRepository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormRepository) CreateItem(ctx context.Context, item *OrderItem) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) UpdateQuantities(ctx context.Context, items []*OrderItem) error {
	if r == nil || r.db == nil {
		return gorm.ErrInvalidDB
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := tx.Model(&OrderItem{}).
				Where("id = ?", item.ID).
				Update("quantity", item.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindItemsByLicenseID returns every item referencing licenseID, earliest
// created first with ties broken by id.
func (r *gormRepository) FindItemsByLicenseID(ctx context.Context, licenseID string) ([]OrderItem, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var items []OrderItem
	if err := r.db.WithContext(ctx).
		Where("license_id = ?", licenseID).
		Order("created_at ASC").Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
