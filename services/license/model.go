package license

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type State string

var (
	Pending State = "pending"
	Active  State = "active"
	Revoked State = "revoked"
	Expired State = "expired"
)

func (s State) String() string {
	switch s {
	case Pending, Active, Revoked, Expired:
		return string(s)
	default:
		return ""
	}
}

// License grants its owner the capability described by its type while active.
// Type specific values live in Fields.
type License struct {
	ID                    string            `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt             time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time         `gorm:"column:updated_at" json:"updated_at"`
	Type                  string            `gorm:"column:type;index" json:"type"`
	ProductVariationID    string            `gorm:"column:product_variation_id" json:"product_variation_id"`
	ProductVariationTitle string            `gorm:"column:product_variation_title" json:"product_variation_title"`
	OwnerID               string            `gorm:"column:owner_id;index" json:"owner_id"`
	State                 State             `gorm:"column:state" json:"state"`
	Label                 string            `gorm:"column:label" json:"label"`
	Fields                datatypes.JSONMap `gorm:"column:fields" json:"fields"`
	GrantedAt             *time.Time        `gorm:"column:granted_at" json:"granted_at,omitempty"`
	RevokedAt             *time.Time        `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
}

func (License) TableName() string { return "licenses" }

// FieldValue returns the value of a type specific license field.
func (l *License) FieldValue(name string) string {
	if l.Fields == nil {
		return ""
	}
	switch v := l.Fields[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (l *License) SetFieldValue(name, value string) {
	if l.Fields == nil {
		l.Fields = datatypes.JSONMap{}
	}
	l.Fields[name] = value
}

// TypeConfig is the saved configuration of a license type.
type TypeConfig struct {
	ID            string            `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at" json:"updated_at"`
	Type          string            `gorm:"column:type;uniqueIndex" json:"type"`
	Configuration datatypes.JSONMap `gorm:"column:configuration" json:"configuration"`
}

func (TypeConfig) TableName() string { return "license_type_configs" }

func (c *TypeConfig) Values() Configuration {
	out := make(Configuration, len(c.Configuration))
	for k, v := range c.Configuration {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
