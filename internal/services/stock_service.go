package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/models"
)

// StockService guards a product's available quantity and sold counter.
type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// Reserve decrements available stock by qty. The decrement is a single
// conditional update so two concurrent checkouts can never oversell.
func (s *StockService) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	return reserveStock(s.db.WithContext(ctx), productID, qty)
}

// Release returns qty units to available stock (cancellation, rollback).
func (s *StockService) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	return releaseStock(s.db.WithContext(ctx), productID, qty)
}

// RecordSold increments the sold counter. Kept separate from Reserve so
// returns can adjust sold counts without touching stock twice.
func (s *StockService) RecordSold(ctx context.Context, productID uuid.UUID, qty int) error {
	return recordSold(s.db.WithContext(ctx), productID, qty)
}

func reserveStock(db *gorm.DB, productID uuid.UUID, qty int) error {
	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func releaseStock(db *gorm.DB, productID uuid.UUID, qty int) error {
	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func recordSold(db *gorm.DB, productID uuid.UUID, qty int) error {
	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("sold", gorm.Expr("sold + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func findProduct(db *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}
