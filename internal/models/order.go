package models

import (
	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions is the full set of allowed status edges. DELIVERED and
// CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order is the aggregate root of the checkout pipeline. TotalPrice is the sum
// of item line totals minus Discount. Status only moves along
// orderTransitions; cancellation is a terminal status, never a row deletion.
type Order struct {
	BaseModel
	Number          int64       `gorm:"uniqueIndex" json:"number"`
	UserID          uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User            *User       `json:"user,omitempty"`
	Status          OrderStatus `gorm:"type:varchar(20);index" json:"status"`
	TotalPrice      int64       `json:"total_price"`
	Discount        int64       `json:"discount"`
	PromotionCode   string      `json:"promotion_code,omitempty"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingPhone   string      `json:"shipping_phone"`
	ShippingName    string      `json:"shipping_name"`
	Note            string      `json:"note"`
	ShipperID       *uuid.UUID  `gorm:"type:uuid;index" json:"shipper_id"`
	Shipper         *User       `gorm:"foreignKey:ShipperID" json:"shipper,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	Payment         *Payment    `json:"payment,omitempty"`
}

// OrderItem freezes the product price at order time; it is never updated
// after creation.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
}
