package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
)

const notePaymentReceived = "PaysonCheckout payment completed, checkout ID: %s."

// HandleNotification is the Payson notification callback. Payson only sends
// the checkout id, so the checkout is fetched back to learn its state.
// Flow:
//   - retrieve checkout -> find the order it references -> record status
//   - readyToShip moves a pending order to processing
//
// Returns 5xx on transient failure (so Payson retries); 200 when processed or
// intentionally ignored.
func (h *GatewayHandler) HandleNotification(c *fiber.Ctx) error {
	checkoutID := c.Query("checkout")
	if checkoutID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "checkout is required"})
	}
	log := h.logger(c).With(slog.String(logging.CheckoutID, checkoutID))
	ctx := c.UserContext()

	co, err := h.Client.GetCheckout(ctx, checkoutID)
	if err != nil {
		log.Error("notification: retrieve checkout failed", slog.String(logging.Error, err.Error()))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	orderID, err := strconv.ParseUint(co.Merchant.Reference, 10, 64)
	if err != nil {
		orderID, err = strconv.ParseUint(c.Query("order_id"), 10, 64)
	}
	if err != nil || orderID == 0 {
		log.Warn("notification: checkout references no order", slog.String("reference", co.Merchant.Reference))
		return c.SendStatus(fiber.StatusOK)
	}
	log = log.With(slog.Uint64(logging.OrderID, orderID))

	order, err := h.Store.FindOrder(ctx, uint(orderID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("notification: unknown order")
		return c.SendStatus(fiber.StatusOK)
	}
	if err != nil {
		log.Error("notification: load order failed", slog.String(logging.Error, err.Error()))
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if order.TransactionID != co.ID {
		log.Warn("notification: checkout does not belong to order", slog.String("transaction_id", order.TransactionID))
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.Store.SetMeta(ctx, order.ID, models.MetaOrderStatus, co.Status); err != nil {
		log.Error("notification: store status failed", slog.String(logging.Error, err.Error()))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if co.Status == payson.StatusReadyToShip && order.Status == models.OrderStatusPending {
		if err := h.Store.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing); err != nil {
			log.Error("notification: update order failed", slog.String(logging.Error, err.Error()))
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if err := h.Store.AddNote(ctx, order.ID, fmt.Sprintf(notePaymentReceived, co.ID)); err != nil {
			log.Error("notification: add note failed", slog.String(logging.Error, err.Error()))
		}
	}

	log.Info("notification: processed", slog.String(logging.Status, co.Status))
	return c.SendStatus(fiber.StatusOK)
}
