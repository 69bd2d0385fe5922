package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopcore/internal/middleware"
	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/services"
)

// DiscountHandler manages discount code endpoints.
type DiscountHandler struct {
	discounts *services.DiscountService
}

// NewDiscountHandler constructs DiscountHandler.
func NewDiscountHandler(discounts *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

type createCodeRequest struct {
	Code          string              `json:"code"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue int64               `json:"discount_value"`
	MinOrderValue int64               `json:"min_order_value"`
	MaxDiscount   int64               `json:"max_discount"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	UsageLimit    int                 `json:"usage_limit"`
}

// CreateCode defines a new discount code (admin only).
func (h *DiscountHandler) CreateCode(c *fiber.Ctx) error {
	var req createCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	dc := models.DiscountCode{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
	}
	if err := h.discounts.CreateCode(c.Context(), &dc); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": dc})
}

type claimRequest struct {
	Code string `json:"code"`
}

// Claim reserves the authenticated user's right to use a code once.
func (h *DiscountHandler) Claim(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req claimRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	claim, err := h.discounts.Claim(c.Context(), req.Code, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": claim})
}

type applyRequest struct {
	Code       string `json:"code"`
	OrderValue int64  `json:"order_value"`
}

// Apply validates and reserves a redemption, returning the computed amounts.
func (h *DiscountHandler) Apply(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req applyRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.discounts.Apply(c.Context(), req.Code, userID, req.OrderValue)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// Reset wipes a code's usage history and counter (admin only).
func (h *DiscountHandler) Reset(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.discounts.ResetUsage(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
