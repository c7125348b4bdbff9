package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/a2n2k3p4/paysoncheckout-backend/capture"
	"github.com/a2n2k3p4/paysoncheckout-backend/checkout"
	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/metrics"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/orderlines"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
	"github.com/a2n2k3p4/paysoncheckout-backend/store"
)

// CheckoutRetriever is the part of the Payson client notifications need.
type CheckoutRetriever interface {
	GetCheckout(ctx context.Context, checkoutID string) (*payson.Checkout, error)
}

// GatewayHandler routes host events and Payson callbacks to the gateway
// components.
type GatewayHandler struct {
	Store      *store.Store
	Renderer   *checkout.Renderer
	Capture    *capture.Service
	Translator orderlines.Translator
	Client     CheckoutRetriever
	Settings   models.GatewaySettings
	Metrics    *metrics.Metrics
	Log        *slog.Logger
}

// Register mounts every route on app.
func (h *GatewayHandler) Register(app *fiber.App) {
	app.Use(traceID)
	app.Use(h.Metrics.Middleware())

	app.Get("/health", h.Health)
	app.Get("/metrics", h.Metrics.Handler())
	app.Get("/settings", h.GetSettings)

	app.Post("/checkout/review", h.RenderCheckout)
	app.Post("/cart/lines", h.CartLines)

	app.Get("/orders", h.ListOrders)
	app.Get("/orders/:id", h.GetOrder)
	app.Get("/orders/:id/lines", h.OrderLines)
	app.Post("/orders/:id/status", h.UpdateOrderStatus)

	app.Post("/notifications/payson", h.HandleNotification)
	app.Get("/notifications/payson", h.HandleNotification)
}

func (h *GatewayHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *GatewayHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.Settings)
}

func traceID(c *fiber.Ctx) error {
	id := c.Get("X-Trace-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(logging.TraceID, id)
	c.Set("X-Trace-ID", id)
	return c.Next()
}

// logger returns the handler logger tagged with the request's trace id.
func (h *GatewayHandler) logger(c *fiber.Ctx) *slog.Logger {
	if id, ok := c.Locals(logging.TraceID).(string); ok {
		return h.Log.With(slog.String(logging.TraceID, id))
	}
	return h.Log
}
