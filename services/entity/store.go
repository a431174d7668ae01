package entity

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	// ErrConflict is returned by Save when the entity changed since it was loaded.
	ErrConflict = errors.New("entity was modified concurrently")
)

// Store describes the host entity and field storage.
type Store interface {
	Create(ctx context.Context, e *Entity) error
	Load(ctx context.Context, id string) (*Entity, error)
	Save(ctx context.Context, e *Entity) error
	CreateFieldDefinition(ctx context.Context, d *FieldDefinition) error
	FieldDefinitions(ctx context.Context, entityType, bundle string) (map[string]*FieldDefinition, error)
}

type gormStore struct {
	db   *gorm.DB
	node *snowflake.Node
}

// NewStore returns a gorm backed Store implementation.
func NewStore(db *gorm.DB, node *snowflake.Node) Store {
	return &gormStore{db: db, node: node}
}

func (s *gormStore) Create(ctx context.Context, e *Entity) error {
	if s == nil || s.db == nil {
		return gorm.ErrInvalidDB
	}
	if e.ID == "" {
		e.ID = s.node.Generate().String()
	}
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *gormStore) Load(ctx context.Context, id string) (*Entity, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var e Entity
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Save persists title and field values guarded by the version column.
func (s *gormStore) Save(ctx context.Context, e *Entity) error {
	if s == nil || s.db == nil {
		return gorm.ErrInvalidDB
	}

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&Entity{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]any{
			"title":      e.Title,
			"fields":     e.Fields,
			"version":    e.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	e.Version++
	e.UpdatedAt = now
	return nil
}

func (s *gormStore) CreateFieldDefinition(ctx context.Context, d *FieldDefinition) error {
	if s == nil || s.db == nil {
		return gorm.ErrInvalidDB
	}
	if d.ID == "" {
		d.ID = s.node.Generate().String()
	}
	if d.Cardinality == 0 {
		d.Cardinality = 1
	}
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *gormStore) FieldDefinitions(ctx context.Context, entityType, bundle string) (map[string]*FieldDefinition, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var defs []*FieldDefinition
	if err := s.db.WithContext(ctx).
		Where("entity_type = ? AND bundle = ?", entityType, bundle).
		Find(&defs).Error; err != nil {
		return nil, err
	}

	out := make(map[string]*FieldDefinition, len(defs))
	for _, d := range defs {
		out[d.FieldName] = d
	}
	return out, nil
}
