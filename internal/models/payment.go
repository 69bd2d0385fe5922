package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodVNPay        PaymentMethod = "VNPAY"
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// ValidPaymentMethod reports whether m is one of the supported methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodVNPay, PaymentMethodCOD, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// PaymentStatus moves PENDING -> {COMPLETED, FAILED} and from COMPLETED to
// {REFUNDED, PARTIALLY_REFUNDED}; it never moves backwards.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Payment is the single payment record of an order.
type Payment struct {
	BaseModel
	OrderID       uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Method        PaymentMethod `gorm:"type:varchar(20)" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);index" json:"status"`
	Amount        int64         `json:"amount"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
}
