package order

import "time"

// Bundle is the order item type.
type Bundle string

var (
	Default      Bundle = "default"
	License      Bundle = "license"
	PayToPublish Bundle = "pay_to_publish"
)

func (b Bundle) String() string {
	switch b {
	case Default, License, PayToPublish:
		return string(b)
	default:
		return ""
	}
}

// HasLicenseField reports whether items of this bundle carry a license reference field.
func (b Bundle) HasLicenseField() bool {
	return b == License || b == PayToPublish
}

type State string

var (
	Draft     State = "draft"
	Completed State = "completed"
	Canceled  State = "canceled"
)

func (s State) String() string {
	switch s {
	case Draft, Completed, Canceled:
		return string(s)
	default:
		return ""
	}
}

type Order struct {
	ID         string       `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt  time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"column:updated_at" json:"updated_at"`
	CustomerID string       `gorm:"column:customer_id;index" json:"customer_id"`
	State      State        `gorm:"column:state" json:"state"`
	Items      []*OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID                string    `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt         time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
	OrderID           string    `gorm:"column:order_id;index" json:"order_id"`
	Bundle            Bundle    `gorm:"column:bundle" json:"bundle"`
	Title             string    `gorm:"column:title" json:"title"`
	PurchasedEntityID string    `gorm:"column:purchased_entity_id" json:"purchased_entity_id"`
	Quantity          int       `gorm:"column:quantity" json:"quantity"`
	LicenseID         *string   `gorm:"column:license_id;index" json:"license_id,omitempty"`
	TargetEntityID    *string   `gorm:"column:target_entity_id" json:"target_entity_id,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }

// PurchasedEntityLabel is the label of the purchased product variation.
func (i *OrderItem) PurchasedEntityLabel() string { return i.Title }

// TargetEntityReference returns the referenced listing id, if any.
func (i *OrderItem) TargetEntityReference() (string, bool) {
	if i.TargetEntityID == nil || *i.TargetEntityID == "" {
		return "", false
	}
	return *i.TargetEntityID, true
}
