package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountType selects how a discount code reduces the order value.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// DiscountCode is a promotion code definition. UsedCount never exceeds
// UsageLimit (when a limit is set); the increment is a conditional update.
type DiscountCode struct {
	BaseModel
	Code          string       `gorm:"uniqueIndex" json:"code"`
	DiscountType  DiscountType `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
	MinOrderValue int64        `json:"min_order_value"`
	MaxDiscount   int64        `json:"max_discount"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	UsageLimit    int          `json:"usage_limit"`
	UsedCount     int          `json:"used_count"`
	IsActive      bool         `gorm:"default:true" json:"is_active"`
}

// DiscountCodeClaim reserves a user's right to use a code once. IsUsed flips
// exactly once, when the code is applied to an order.
type DiscountCodeClaim struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_claim_user_code" json:"user_id"`
	DiscountCodeID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_claim_user_code" json:"discount_code_id"`
	IsUsed         bool      `json:"is_used"`
}

// DiscountCodeUsage is the permanent record that a user consumed a code.
// OrderID is filled in once the order row exists; usages are deleted only by
// an explicit admin usage reset.
type DiscountCodeUsage struct {
	BaseModel
	UserID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_usage_user_code" json:"user_id"`
	DiscountCodeID uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_usage_user_code" json:"discount_code_id"`
	OrderID        *uuid.UUID `gorm:"type:uuid" json:"order_id"`
}
