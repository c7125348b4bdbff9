package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
)

// RenderCheckout handles the checkout review event: the body is the session
// cart, the reply is the Payson snippet markup.
func (h *GatewayHandler) RenderCheckout(c *fiber.Ctx) error {
	var cart models.Cart
	if err := c.BodyParser(&cart); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cart: " + err.Error()})
	}
	if cart.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart key is required"})
	}

	out, err := h.Renderer.Render(c.UserContext(), cart)
	if err != nil {
		h.logger(c).Error("render checkout failed", slog.String(logging.Error, err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare checkout"})
	}
	if out == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	c.Type("html", "utf-8")
	return c.SendString(out)
}

// CartLines shows the Payson order lines a cart translates to.
func (h *GatewayHandler) CartLines(c *fiber.Ctx) error {
	var cart models.Cart
	if err := c.BodyParser(&cart); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cart: " + err.Error()})
	}
	return c.JSON(h.Translator.CartLines(cart))
}
