package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/services"
)

// PaymentHandler manages payment endpoints.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Callback is the gateway redirect target. Signature failures mutate nothing
// and come back as an external-verification error; a verified-but-declined
// payment reports failure with the order attached.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	params := c.Queries()

	order, err := h.payments.HandleGatewayReturn(c.Context(), params)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotCompleted) && order != nil {
			return c.JSON(fiber.Map{
				"success": false,
				"data": fiber.Map{
					"order_id":      order.ID,
					"response_code": params["vnp_ResponseCode"],
				},
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type manualPaymentRequest struct {
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
}

// ManualUpdate lets an admin complete a bank transfer or fail a pending
// payment.
func (h *PaymentHandler) ManualUpdate(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req manualPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.payments.ManualUpdate(c.Context(), orderID, req.Status, req.TransactionID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

// Refund refunds a completed payment, fully or partially.
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payment, err := h.payments.Refund(c.Context(), paymentID, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": payment})
}
