package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of an order. The numeric values are persisted.
type OrderStatus int

const (
	StatusPending    OrderStatus = 1
	StatusConfirmed  OrderStatus = 2
	StatusInProgress OrderStatus = 3
	StatusReady      OrderStatus = 4
	StatusShipped    OrderStatus = 5
	StatusCompleted  OrderStatus = 6
	StatusCancelled  OrderStatus = 7
)

var statusNames = map[OrderStatus]string{
	StatusPending:    "pending",
	StatusConfirmed:  "confirmed",
	StatusInProgress: "in_progress",
	StatusReady:      "ready",
	StatusShipped:    "shipped",
	StatusCompleted:  "completed",
	StatusCancelled:  "cancelled",
}

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusInProgress, StatusReady,
	StatusShipped, StatusCompleted, StatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DeliveryMethod is how the customer receives the order
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

func (d DeliveryMethod) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	TenantID        TenantID             `json:"tenant_id" gorm:"not null;index"`
	CustomerID      uint                 `json:"customer_id" gorm:"not null;index"`
	Customer        *User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Status          OrderStatus          `json:"status" gorm:"not null"`
	DeliveryMethod  DeliveryMethod       `json:"delivery_method" gorm:"size:20;not null"`
	DeliveryAddress string               `json:"delivery_address"`
	Total           decimal.Decimal      `json:"total" gorm:"type:decimal(12,2);not null"`
	Notes           string               `json:"notes"`
	Items           []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory   []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// OrderItem snapshots the product name and unit price at order time.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
}

// OrderStatusHistory is append-only: one row per transition, including creation.
type OrderStatusHistory struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	OrderID   uint        `json:"order_id" gorm:"not null;index"`
	Status    OrderStatus `json:"status" gorm:"not null"`
	ChangedBy uint        `json:"changed_by"`
	Note      string      `json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
