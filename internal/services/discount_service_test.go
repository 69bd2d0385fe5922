package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/shopcore/internal/models"
)

func activeCode(dt models.DiscountType, value, minOrder, maxDiscount int64, limit int) *models.DiscountCode {
	now := time.Now()
	return &models.DiscountCode{
		Code:          "SALE10",
		DiscountType:  dt,
		DiscountValue: value,
		MinOrderValue: minOrder,
		MaxDiscount:   maxDiscount,
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		UsageLimit:    limit,
		IsActive:      true,
	}
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name       string
		code       *models.DiscountCode
		orderValue int64
		want       int64
	}{
		{
			name:       "percentage capped at max discount",
			code:       activeCode(models.DiscountTypePercentage, 10, 100000, 50000, 0),
			orderValue: 500000,
			want:       50000,
		},
		{
			name:       "percentage below cap",
			code:       activeCode(models.DiscountTypePercentage, 10, 100000, 50000, 0),
			orderValue: 200000,
			want:       20000,
		},
		{
			name:       "percentage without cap",
			code:       activeCode(models.DiscountTypePercentage, 25, 0, 0, 0),
			orderValue: 1000000,
			want:       250000,
		},
		{
			name:       "fixed amount",
			code:       activeCode(models.DiscountTypeFixedAmount, 30000, 0, 0, 0),
			orderValue: 500000,
			want:       30000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDiscount(tt.code, tt.orderValue))
		})
	}
}

func TestComputeDiscountFinalAmount(t *testing.T) {
	// SALE10: 10% capped at 50000, minimum order 100000.
	code := activeCode(models.DiscountTypePercentage, 10, 100000, 50000, 0)
	amount := ComputeDiscount(code, 500000)
	assert.Equal(t, int64(50000), amount)
	assert.Equal(t, int64(450000), 500000-amount)
}

func TestCheckCode(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		mutate     func(dc *models.DiscountCode)
		orderValue int64
		wantErr    error
	}{
		{
			name:       "valid",
			mutate:     func(dc *models.DiscountCode) {},
			orderValue: 200000,
			wantErr:    nil,
		},
		{
			name:       "inactive",
			mutate:     func(dc *models.DiscountCode) { dc.IsActive = false },
			orderValue: 200000,
			wantErr:    ErrCodeExpired,
		},
		{
			name: "not started yet",
			mutate: func(dc *models.DiscountCode) {
				dc.StartDate = now.Add(time.Hour)
				dc.EndDate = now.Add(48 * time.Hour)
			},
			orderValue: 200000,
			wantErr:    ErrCodeExpired,
		},
		{
			name: "already ended",
			mutate: func(dc *models.DiscountCode) {
				dc.StartDate = now.Add(-48 * time.Hour)
				dc.EndDate = now.Add(-time.Hour)
			},
			orderValue: 200000,
			wantErr:    ErrCodeExpired,
		},
		{
			name: "limit reached",
			mutate: func(dc *models.DiscountCode) {
				dc.UsageLimit = 5
				dc.UsedCount = 5
			},
			orderValue: 200000,
			wantErr:    ErrCodeLimitReached,
		},
		{
			name: "no limit configured",
			mutate: func(dc *models.DiscountCode) {
				dc.UsageLimit = 0
				dc.UsedCount = 100
			},
			orderValue: 200000,
			wantErr:    nil,
		},
		{
			name:       "below minimum order value",
			mutate:     func(dc *models.DiscountCode) {},
			orderValue: 50000,
			wantErr:    ErrCodeBelowMinimum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := activeCode(models.DiscountTypePercentage, 10, 100000, 50000, 0)
			tt.mutate(dc)

			err := checkCode(dc, tt.orderValue, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
