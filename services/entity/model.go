package entity

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Entity is a content entity owned by the host content system. Field values
// are kept as machine values keyed by field name.
type Entity struct {
	ID         string            `gorm:"column:id;primaryKey"`
	CreatedAt  time.Time         `gorm:"column:created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at"`
	EntityType string            `gorm:"column:entity_type;index:idx_entity_type_bundle"`
	Bundle     string            `gorm:"column:bundle;index:idx_entity_type_bundle"`
	Title      string            `gorm:"column:title"`
	Fields     datatypes.JSONMap `gorm:"column:fields"`
	Version    int64             `gorm:"column:version;not null;default:0"`
}

func (Entity) TableName() string { return "content_entities" }

func (e *Entity) Label() string { return e.Title }

// FieldValue returns the value stored under name and whether it is set.
func (e *Entity) FieldValue(name string) (string, bool) {
	if e.Fields == nil {
		return "", false
	}
	v, ok := e.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

func (e *Entity) SetFieldValue(name, value string) {
	if e.Fields == nil {
		e.Fields = datatypes.JSONMap{}
	}
	e.Fields[name] = value
}

func (e *Entity) ClearFieldValue(name string) {
	delete(e.Fields, name)
}

// FieldDefinition describes one field of an entity type bundle.
type FieldDefinition struct {
	ID           string    `gorm:"column:id;primaryKey"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	EntityType   string    `gorm:"column:entity_type;uniqueIndex:idx_field_definition"`
	Bundle       string    `gorm:"column:bundle;uniqueIndex:idx_field_definition"`
	FieldName    string    `gorm:"column:field_name;uniqueIndex:idx_field_definition"`
	FieldType    string    `gorm:"column:field_type"`
	Label        string    `gorm:"column:label"`
	DefaultValue *string   `gorm:"column:default_value"`
	Required     bool      `gorm:"column:required"`
	Cardinality  int       `gorm:"column:cardinality;default:1"`
}

func (FieldDefinition) TableName() string { return "field_definitions" }

// GetDefaultValue returns the schema default for the field on e. The boolean
// is false when the field has no default and should be emptied.
func (d *FieldDefinition) GetDefaultValue(e *Entity) (string, bool) {
	if d.DefaultValue == nil {
		return "", false
	}
	return *d.DefaultValue, true
}
