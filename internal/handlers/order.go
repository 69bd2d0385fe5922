package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopcore/internal/middleware"
	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/services"
	"github.com/example/shopcore/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders   *services.OrderService
	payments *services.PaymentService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService, payments *services.PaymentService) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments}
}

// CreateOrder places an order for the authenticated user. For VNPay orders
// the response carries the signed redirect URL.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Create(c.Context(), userID, req)
	if err != nil {
		return err
	}

	data := fiber.Map{"order": order}
	if req.PaymentMethod == models.PaymentMethodVNPay {
		data["payment_url"] = h.payments.BuildRedirectURL(order, c.IP())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ListOrders returns the authenticated user's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	filter := services.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentMethod: models.PaymentMethod(c.Query("payment_method")),
		MinTotal:      int64(c.QueryInt("min_total")),
		MaxTotal:      int64(c.QueryInt("max_total")),
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.List(c.Context(), userID, filter, pg)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id, userID, middleware.GetCurrentRole(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

// UpdateStatus moves an order along the transition table (admin only).
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Context(), id, req.Status, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelOrder lets the owner cancel a still-pending order.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Cancel(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
