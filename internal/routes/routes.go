package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/config"
	"github.com/example/shopcore/internal/handlers"
	"github.com/example/shopcore/internal/middleware"
	"github.com/example/shopcore/internal/models"
	"github.com/example/shopcore/internal/services"
)

// Register wires up services, event subscribers and all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	bus := services.NewInProcBus()

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	bus.Subscribe(telegram.HandleEvent)

	vnpay := services.NewVNPayService(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayPayURL, cfg.VNPayReturnURL)

	orderService := services.NewOrderService(db, bus)
	paymentService := services.NewPaymentService(db, vnpay, bus)
	discountService := services.NewDiscountService(db)
	deliveryService := services.NewDeliveryService(db, orderService)

	orderHandler := handlers.NewOrderHandler(orderService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService, paymentService)

	api := app.Group("/api")

	// The gateway calls back unauthenticated; the signature is the auth.
	api.Get("/payments/callback", paymentHandler.Callback)

	auth := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	shipperOnly := middleware.RequireRole(models.RoleShipper)

	orders := api.Group("/orders", auth)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id/status", adminOnly, orderHandler.UpdateStatus)
	orders.Put("/:id/cancel", orderHandler.CancelOrder)
	orders.Get("/:orderId/delivery-logs", deliveryHandler.Logs)
	orders.Get("/:orderId/rating", deliveryHandler.GetRating)
	orders.Post("/:orderId/rating", deliveryHandler.CreateRating)

	payments := api.Group("/payments", auth, adminOnly)
	payments.Patch("/:orderId", paymentHandler.ManualUpdate)
	payments.Post("/:paymentId/refund", paymentHandler.Refund)

	discounts := api.Group("/discount-codes", auth)
	discounts.Post("/", adminOnly, discountHandler.CreateCode)
	discounts.Post("/claim", discountHandler.Claim)
	discounts.Post("/apply", discountHandler.Apply)
	discounts.Post("/:id/reset", adminOnly, discountHandler.Reset)

	shippers := api.Group("/shippers", auth)
	shippers.Post("/orders/:orderId/assign", adminOnly, deliveryHandler.AssignShipper)
	shippers.Patch("/orders/:orderId/status", shipperOnly, deliveryHandler.UpdateStatus)
	shippers.Post("/orders/:orderId/cod-confirm", shipperOnly, deliveryHandler.ConfirmCOD)
}
