package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/utils"
)

// OrderService owns the order aggregate and its state machine, and
// orchestrates the stock and discount ledgers during creation and
// transitions.
type OrderService struct {
	db  *gorm.DB
	bus EventBus
}

func NewOrderService(db *gorm.DB, bus EventBus) *OrderService {
	return &OrderService{db: db, bus: bus}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderInput is everything checkout needs beyond the user id.
type CreateOrderInput struct {
	Items           []OrderItemInput     `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	ShippingPhone   string               `json:"shipping_phone"`
	ShippingName    string               `json:"shipping_name"`
	Note            string               `json:"note"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	PromotionCode   string               `json:"promotion_code"`
}

// OrderFilter is the closed set of list criteria.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	MinTotal      int64
	MaxTotal      int64
}

// Create runs the whole checkout as one transaction: price snapshots, stock
// reservation per item, discount redemption, then order + items + pending
// payment. Any failure rolls everything back, including the reservations.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, validationError("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, validationError("item quantity must be positive")
		}
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, validationError("invalid payment method")
	}
	if in.ShippingAddress == "" || in.ShippingPhone == "" {
		return nil, validationError("shipping address and phone are required")
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		items := make([]models.OrderItem, 0, len(in.Items))

		for _, item := range in.Items {
			product, err := findProduct(tx, item.ProductID)
			if err != nil {
				return err
			}
			if err := reserveStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			items = append(items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
			total += product.Price * int64(item.Quantity)
		}

		var discount int64
		var discountCodeID uuid.UUID
		if in.PromotionCode != "" {
			applied, err := applyCode(tx, in.PromotionCode, userID, total)
			if err != nil {
				return err
			}
			discount = applied.DiscountAmount
			discountCodeID = applied.DiscountCodeID
		}

		order = &models.Order{
			Number:          generateOrderNumber(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			TotalPrice:      total - discount,
			Discount:        discount,
			PromotionCode:   in.PromotionCode,
			ShippingAddress: in.ShippingAddress,
			ShippingPhone:   in.ShippingPhone,
			ShippingName:    in.ShippingName,
			Note:            in.Note,
			Items:           items,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID: order.ID,
			Method:  in.PaymentMethod,
			Status:  models.PaymentStatusPending,
			Amount:  order.TotalPrice,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		order.Payment = &payment

		if in.PromotionCode != "" {
			// The usage row predates the order; link it now that the id exists.
			if err := attachUsageOrder(tx, userID, discountCodeID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(Event{
		Type:    EventOrderCreated,
		OrderID: order.ID,
		Number:  order.Number,
		UserID:  userID,
		Status:  order.Status,
		Amount:  order.TotalPrice,
	})
	return order, nil
}

// UpdateStatus moves an order along the transition table. The write is
// conditional on the expected current status, so two racing transition
// requests cannot both succeed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus models.OrderStatus, note string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionOrder(tx, order, newStatus, note)
	})
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	s.bus.Publish(Event{
		Type:    EventOrderStatusChanged,
		OrderID: order.ID,
		Number:  order.Number,
		UserID:  order.UserID,
		Status:  newStatus,
		Amount:  order.TotalPrice,
	})
	return order, nil
}

// transitionOrder performs the conditional status write plus the per-edge
// side effects. order must be loaded with its items.
func transitionOrder(tx *gorm.DB, order *models.Order, newStatus models.OrderStatus, note string) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent request moved the order first.
		return ErrInvalidTransition
	}

	if newStatus == models.OrderStatusDelivered {
		for _, item := range order.Items {
			if err := recordSold(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}

	if order.ShipperID != nil {
		log := models.DeliveryLog{
			OrderID:    order.ID,
			DeliveryID: *order.ShipperID,
			Status:     newStatus,
			Note:       note,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
	}
	return nil
}

// Cancel is the owner-initiated cancellation: PENDING orders only, and only
// while the payment has not completed. Order and payment flip atomically and
// the stock reservation is returned.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrOrderNotCancellable
	}
	if order.Payment != nil && order.Payment.Status == models.PaymentStatusCompleted {
		return nil, ErrOrderNotCancellable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotCancellable
		}

		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := releaseStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	s.bus.Publish(Event{
		Type:    EventOrderStatusChanged,
		OrderID: order.ID,
		Number:  order.Number,
		UserID:  order.UserID,
		Status:  order.Status,
		Amount:  order.TotalPrice,
	})
	return order, nil
}

// Get returns the order with items and payment, scoped to its owner unless
// the caller holds an elevated role.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && role != models.RoleAdmin && role != models.RoleShipper {
		// Another user's order looks like it does not exist.
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, filter OrderFilter, pg utils.Pagination) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinTotal > 0 {
		query = query.Where("total_price >= ?", filter.MinTotal)
	}
	if filter.MaxTotal > 0 {
		query = query.Where("total_price <= ?", filter.MaxTotal)
	}
	if filter.PaymentMethod != "" {
		query = query.Joins("JOIN payments ON payments.order_id = orders.id").
			Where("payments.method = ?", filter.PaymentMethod)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *OrderService) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").Preload("Payment").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func generateOrderNumber() int64 {
	return time.Now().UnixNano() % 1_000_000_000_000
}
