package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopcore/internal/middleware"
	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/services"
)

// DeliveryHandler manages shipper assignment, delivery status and ratings.
type DeliveryHandler struct {
	delivery *services.DeliveryService
	payments *services.PaymentService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(delivery *services.DeliveryService, payments *services.PaymentService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery, payments: payments}
}

type assignShipperRequest struct {
	ShipperID string `json:"shipper_id"`
}

// AssignShipper assigns a courier to an order (admin only).
func (h *DeliveryHandler) AssignShipper(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req assignShipperRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	shipperID, err := uuid.Parse(req.ShipperID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid shipper id")
	}

	order, err := h.delivery.AssignShipper(c.Context(), orderID, shipperID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type deliveryStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

// UpdateStatus lets the assigned shipper advance the delivery.
func (h *DeliveryHandler) UpdateStatus(c *fiber.Ctx) error {
	shipperID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req deliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.delivery.UpdateStatus(c.Context(), orderID, shipperID, req.Status, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ConfirmCOD records cash collected by the assigned shipper.
func (h *DeliveryHandler) ConfirmCOD(c *fiber.Ctx) error {
	shipperID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := h.payments.ConfirmCOD(c.Context(), orderID, shipperID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Logs returns the order's delivery audit trail.
func (h *DeliveryHandler) Logs(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	logs, err := h.delivery.Logs(c.Context(), orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": logs})
}

type ratingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateRating records the single post-delivery rating.
func (h *DeliveryHandler) CreateRating(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rating, err := h.delivery.Rate(c.Context(), orderID, userID, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rating})
}

// GetRating returns the order's rating, or null when none exists yet.
func (h *DeliveryHandler) GetRating(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	rating, err := h.delivery.GetRating(c.Context(), orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": rating})
}
