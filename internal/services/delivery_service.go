package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/models"
)

// DeliveryService assigns couriers, appends the immutable status audit trail
// and records the single post-delivery rating.
type DeliveryService struct {
	db     *gorm.DB
	orders *OrderService
}

func NewDeliveryService(db *gorm.DB, orders *OrderService) *DeliveryService {
	return &DeliveryService{db: db, orders: orders}
}

// AssignShipper puts the order into the delivery flow: the target user must
// hold the shipper role, the order moves to PROCESSING and the first audit
// entry is written.
func (s *DeliveryService) AssignShipper(ctx context.Context, orderID, shipperID uuid.UUID) (*models.Order, error) {
	var shipper models.User
	if err := s.db.WithContext(ctx).First(&shipper, "id = ?", shipperID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipperNotFound
		}
		return nil, err
	}
	if shipper.Role != models.RoleShipper {
		return nil, ErrNotShipper
	}

	order, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, models.OrderStatusProcessing) {
		return nil, ErrInvalidTransition
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("shipper_id", shipperID).Error; err != nil {
			return err
		}
		order.ShipperID = &shipperID
		return transitionOrder(tx, order, models.OrderStatusProcessing, "shipper assigned")
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusProcessing
	s.orders.bus.Publish(Event{
		Type:    EventOrderStatusChanged,
		OrderID: order.ID,
		Number:  order.Number,
		UserID:  order.UserID,
		Status:  order.Status,
		Amount:  order.TotalPrice,
	})
	return order, nil
}

// UpdateStatus lets the assigned shipper advance the order. The audit entry
// is appended by the order ledger as part of the transition.
func (s *DeliveryService) UpdateStatus(ctx context.Context, orderID, shipperID uuid.UUID, status models.OrderStatus, note string) (*models.Order, error) {
	order, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShipperID == nil || *order.ShipperID != shipperID {
		return nil, ErrNotAssignedShipper
	}
	return s.orders.UpdateStatus(ctx, orderID, status, note)
}

// Logs returns the order's audit trail in insertion order.
func (s *DeliveryService) Logs(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryLog, error) {
	var logs []models.DeliveryLog
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Rate records the single post-delivery rating for the order.
func (s *DeliveryService) Rate(ctx context.Context, orderID, userID uuid.UUID, rating int, comment string) (*models.DeliveryRating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	order, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	row := models.DeliveryRating{
		OrderID: orderID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRated
		}
		return nil, err
	}
	return &row, nil
}

// GetRating returns nil without error when the order has no rating yet.
func (s *DeliveryService) GetRating(ctx context.Context, orderID uuid.UUID) (*models.DeliveryRating, error) {
	order, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	var rating models.DeliveryRating
	if err := s.db.WithContext(ctx).First(&rating, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}
