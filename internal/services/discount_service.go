package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/models"
)

// DiscountService tracks code definitions, per-user claims and per-user
// usage with atomic counters.
type DiscountService struct {
	db *gorm.DB
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{db: db}
}

// ApplyResult is the outcome of reserving a discount redemption.
type ApplyResult struct {
	DiscountCodeID uuid.UUID `json:"discount_code_id"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalAmount    int64     `json:"final_amount"`
}

// ComputeDiscount returns the amount a code takes off the given order value.
// PERCENTAGE is capped at MaxDiscount when a cap is set.
func ComputeDiscount(dc *models.DiscountCode, orderValue int64) int64 {
	switch dc.DiscountType {
	case models.DiscountTypePercentage:
		amount := orderValue * dc.DiscountValue / 100
		if dc.MaxDiscount > 0 && amount > dc.MaxDiscount {
			amount = dc.MaxDiscount
		}
		return amount
	case models.DiscountTypeFixedAmount:
		return dc.DiscountValue
	}
	return 0
}

// checkCode runs every validation that needs no storage lookup beyond the
// code row itself.
func checkCode(dc *models.DiscountCode, orderValue int64, now time.Time) error {
	if !dc.IsActive || now.Before(dc.StartDate) || now.After(dc.EndDate) {
		return ErrCodeExpired
	}
	if dc.UsageLimit > 0 && dc.UsedCount >= dc.UsageLimit {
		return ErrCodeLimitReached
	}
	if orderValue < dc.MinOrderValue {
		return ErrCodeBelowMinimum
	}
	return nil
}

// Validate checks whether userID may apply the code to an order of the given
// value. Failures carry a typed reason.
func (s *DiscountService) Validate(ctx context.Context, code string, userID uuid.UUID, orderValue int64) (*models.DiscountCode, error) {
	return validateCode(s.db.WithContext(ctx), code, userID, orderValue)
}

func validateCode(db *gorm.DB, code string, userID uuid.UUID, orderValue int64) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	if err := db.First(&dc, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	if err := checkCode(&dc, orderValue, time.Now()); err != nil {
		return nil, err
	}

	var used int64
	if err := db.Model(&models.DiscountCodeUsage{}).
		Where("user_id = ? AND discount_code_id = ?", userID, dc.ID).
		Count(&used).Error; err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, ErrCodeAlreadyUsed
	}

	return &dc, nil
}

// Claim reserves the user's right to use the code once.
func (s *DiscountService) Claim(ctx context.Context, code string, userID uuid.UUID) (*models.DiscountCodeClaim, error) {
	var dc models.DiscountCode
	if err := s.db.WithContext(ctx).First(&dc, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	claim := models.DiscountCodeClaim{UserID: userID, DiscountCodeID: dc.ID}
	if err := s.db.WithContext(ctx).Create(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateClaim
		}
		return nil, err
	}
	return &claim, nil
}

// Apply validates the code and, in one transaction, records the usage and
// increments the used counter. The counter increment is conditional on the
// usage limit so the limit holds under arbitrary concurrency.
func (s *DiscountService) Apply(ctx context.Context, code string, userID uuid.UUID, orderValue int64) (*ApplyResult, error) {
	var result *ApplyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := applyCode(tx, code, userID, orderValue)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyCode(tx *gorm.DB, code string, userID uuid.UUID, orderValue int64) (*ApplyResult, error) {
	dc, err := validateCode(tx, code, userID, orderValue)
	if err != nil {
		return nil, err
	}

	// The usage row is created before the order exists; AttachOrder back-fills
	// the order id after checkout commits.
	usage := models.DiscountCodeUsage{UserID: userID, DiscountCodeID: dc.ID}
	if err := tx.Create(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeAlreadyUsed
		}
		return nil, err
	}

	// Flip the claim exactly once if the user had one.
	if err := tx.Model(&models.DiscountCodeClaim{}).
		Where("user_id = ? AND discount_code_id = ? AND is_used = ?", userID, dc.ID, false).
		Update("is_used", true).Error; err != nil {
		return nil, err
	}

	counter := tx.Model(&models.DiscountCode{}).Where("id = ?", dc.ID)
	if dc.UsageLimit > 0 {
		counter = counter.Where("used_count < usage_limit")
	}
	res := counter.Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCodeLimitReached
	}

	amount := ComputeDiscount(dc, orderValue)
	return &ApplyResult{
		DiscountCodeID: dc.ID,
		DiscountAmount: amount,
		FinalAmount:    orderValue - amount,
	}, nil
}

// AttachOrder back-fills the pending usage row once the order id is known.
func (s *DiscountService) AttachOrder(ctx context.Context, userID, discountCodeID, orderID uuid.UUID) error {
	return attachUsageOrder(s.db.WithContext(ctx), userID, discountCodeID, orderID)
}

func attachUsageOrder(db *gorm.DB, userID, discountCodeID, orderID uuid.UUID) error {
	return db.Model(&models.DiscountCodeUsage{}).
		Where("user_id = ? AND discount_code_id = ? AND order_id IS NULL", userID, discountCodeID).
		Update("order_id", orderID).Error
}

// ResetUsage deletes every usage and claim for the code and zeroes the
// counter, re-activating it for all users.
func (s *DiscountService) ResetUsage(ctx context.Context, discountCodeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dc models.DiscountCode
		if err := tx.First(&dc, "id = ?", discountCodeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCodeNotFound
			}
			return err
		}

		if err := tx.Where("discount_code_id = ?", discountCodeID).
			Delete(&models.DiscountCodeUsage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discount_code_id = ?", discountCodeID).
			Delete(&models.DiscountCodeClaim{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.DiscountCode{}).
			Where("id = ?", discountCodeID).
			Update("used_count", 0).Error
	})
}

// CreateCode defines a new discount code.
func (s *DiscountService) CreateCode(ctx context.Context, dc *models.DiscountCode) error {
	if dc.Code == "" {
		return validationError("code is required")
	}
	if dc.DiscountType != models.DiscountTypePercentage && dc.DiscountType != models.DiscountTypeFixedAmount {
		return validationError("invalid discount type")
	}
	if dc.DiscountValue <= 0 {
		return validationError("discount value must be positive")
	}
	if !dc.EndDate.After(dc.StartDate) {
		return validationError("end date must be after start date")
	}
	if err := s.db.WithContext(ctx).Create(dc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflictError("discount code already exists")
		}
		return err
	}
	return nil
}
