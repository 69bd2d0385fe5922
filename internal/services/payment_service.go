package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/models"
)

// PaymentService finalizes payments: gateway callbacks, the two in-house
// methods (cash on delivery, manual bank transfer) and refunds.
type PaymentService struct {
	db    *gorm.DB
	vnpay *VNPayService
	bus   EventBus
}

func NewPaymentService(db *gorm.DB, vnpay *VNPayService, bus EventBus) *PaymentService {
	return &PaymentService{db: db, vnpay: vnpay, bus: bus}
}

// BuildRedirectURL returns the signed gateway URL for a pending VNPay order.
func (s *PaymentService) BuildRedirectURL(order *models.Order, clientIP string) string {
	return s.vnpay.BuildPaymentURL(order.Number, order.TotalPrice, clientIP)
}

// HandleGatewayReturn verifies the signed callback and, on success, completes
// the payment and advances the order. A signature mismatch mutates nothing.
func (s *PaymentService) HandleGatewayReturn(ctx context.Context, params map[string]string) (*models.Order, error) {
	if !s.vnpay.VerifyCallback(params) {
		return nil, ErrSignatureMismatch
	}

	number, err := ParseTxnRef(params["vnp_TxnRef"])
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").Preload("Payment").
		First(&order, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Payment == nil {
		return nil, ErrPaymentNotFound
	}

	if params["vnp_ResponseCode"] != vnpResponseSuccess {
		// Signature is valid but the gateway reports a failed payment.
		err := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed).Error
		if err != nil {
			return nil, err
		}
		order.Payment.Status = models.PaymentStatusFailed
		return &order, ErrPaymentNotCompleted
	}

	if err := s.complete(ctx, &order, params["vnp_TransactionNo"]); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmCOD is invoked by the assigned shipper after collecting cash.
func (s *PaymentService) ConfirmCOD(ctx context.Context, orderID, shipperID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShipperID == nil || *order.ShipperID != shipperID {
		return nil, ErrNotAssignedShipper
	}
	if order.Payment.Method != models.PaymentMethodCOD {
		return nil, conflictError("payment method is not cash on delivery")
	}

	if err := s.complete(ctx, order, ""); err != nil {
		return nil, err
	}
	return order, nil
}

// ManualUpdate lets an admin finish a bank transfer (with the bank's
// transaction id) or mark a pending payment failed.
func (s *PaymentService) ManualUpdate(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus, transactionID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.PaymentStatusCompleted:
		if err := s.complete(ctx, order, transactionID); err != nil {
			return nil, err
		}
	case models.PaymentStatusFailed:
		res := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrPaymentNotPending
		}
		order.Payment.Status = models.PaymentStatusFailed
	default:
		return nil, validationError("status must be COMPLETED or FAILED")
	}
	return order, nil
}

// Refund moves a completed payment to REFUNDED (full) or PARTIALLY_REFUNDED.
// A full refund of an undelivered order also cancels the order.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID, amount int64) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != models.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}
	if amount <= 0 {
		return nil, validationError("refund amount must be positive")
	}
	if amount > payment.Amount {
		return nil, ErrRefundTooLarge
	}

	newStatus := models.PaymentStatusPartiallyRefunded
	if amount == payment.Amount {
		newStatus = models.PaymentStatusRefunded
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentStatusCompleted).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotCompleted
		}

		if newStatus == models.PaymentStatusRefunded {
			// Close out the order unless it already reached a terminal state.
			return tx.Model(&models.Order{}).
				Where("id = ? AND status NOT IN ?", payment.OrderID,
					[]models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled}).
				Update("status", models.OrderStatusCancelled).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = newStatus
	return &payment, nil
}

// complete marks the pending payment completed and advances the order out of
// PENDING when it has not moved yet. Shared by the gateway, COD and bank
// transfer paths.
func (s *PaymentService) complete(ctx context.Context, order *models.Order, transactionID string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":       models.PaymentStatusCompleted,
			"payment_date": &now,
		}
		if transactionID != "" {
			updates["transaction_id"] = transactionID
		}
		res := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotPending
		}

		if order.Status == models.OrderStatusPending {
			if err := transitionOrder(tx, order, models.OrderStatusConfirmed, "payment verified"); err != nil {
				return err
			}
		}

		if order.PromotionCode != "" {
			// Back-fill the usage row in case the redemption is still pending.
			var dc models.DiscountCode
			if err := tx.First(&dc, "code = ?", order.PromotionCode).Error; err == nil {
				if err := attachUsageOrder(tx, order.UserID, dc.ID, order.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Payment.Status = models.PaymentStatusCompleted
	order.Payment.PaymentDate = &now
	if transactionID != "" {
		order.Payment.TransactionID = transactionID
	}
	if order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusConfirmed
	}

	s.bus.Publish(Event{
		Type:    EventPaymentCompleted,
		OrderID: order.ID,
		Number:  order.Number,
		UserID:  order.UserID,
		Status:  order.Status,
		Amount:  order.Payment.Amount,
	})
	return nil
}

func (s *PaymentService) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").Preload("Payment").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Payment == nil {
		return nil, ErrPaymentNotFound
	}
	return &order, nil
}
