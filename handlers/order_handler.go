package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/store"
)

var orderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusCancelled:  true,
}

func (h *GatewayHandler) ListOrders(c *fiber.Ctx) error {
	f := store.OrderFilters{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
	}
	limit, offset := parseLimitOffset(c.Query("limit"), c.Query("offset"))

	orders, total, err := h.Store.ListOrders(c.UserContext(), f, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve orders: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"pagination": fiber.Map{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *GatewayHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.Store.FindOrder(c.UserContext(), id)
	if err != nil {
		return orderLookupError(c, err)
	}
	return c.JSON(order)
}

func (h *GatewayHandler) OrderLines(c *fiber.Ctx) error {
	id, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.Store.FindOrder(c.UserContext(), id)
	if err != nil {
		return orderLookupError(c, err)
	}
	return c.JSON(h.Translator.OrderLines(order))
}

// UpdateOrderStatus applies a status change coming from the store. Moving an
// order into "completed" is the event that captures its reservation.
func (h *GatewayHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseOrderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || !orderStatuses[body.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be one of pending, processing, completed, cancelled"})
	}

	ctx := c.UserContext()
	order, err := h.Store.FindOrder(ctx, id)
	if err != nil {
		return orderLookupError(c, err)
	}
	previous := order.Status
	if err := h.Store.UpdateStatus(ctx, id, body.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update order: " + err.Error()})
	}

	resp := fiber.Map{"order_id": id, "status": body.Status}
	if body.Status != models.OrderStatusCompleted || previous == models.OrderStatusCompleted {
		return c.JSON(resp)
	}

	res, err := h.Capture.Capture(ctx, id)
	if err != nil {
		h.logger(c).Error("capture failed", slog.Uint64(logging.OrderID, uint64(id)), slog.String(logging.Error, err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to capture reservation: " + err.Error()})
	}
	h.Metrics.ObserveCapture(string(res))
	resp["capture"] = res
	return c.JSON(resp)
}

func parseOrderID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid order id")
	}
	return uint(n), nil
}

func orderLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve order: " + err.Error()})
}

func parseLimitOffset(limitStr, offsetStr string) (int, int) {
	limit, offset := 50, 0
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}
