package models

import (
	"github.com/google/uuid"
)

// DeliveryLog is one append-only entry in an order's delivery audit trail.
// Rows are never updated or deleted; ordering by CreatedAt is the trail.
type DeliveryLog struct {
	BaseModel
	OrderID    uuid.UUID   `gorm:"type:uuid;index" json:"order_id"`
	DeliveryID uuid.UUID   `gorm:"type:uuid;index" json:"delivery_id"`
	Status     OrderStatus `gorm:"type:varchar(20)" json:"status"`
	Note       string      `json:"note"`
}

// DeliveryRating is the single post-delivery review of an order's courier.
type DeliveryRating struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	UserID  uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
}
