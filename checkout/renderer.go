// Package checkout renders the hosted PaysonCheckout snippet on the checkout
// review page and manages the checkout sessions behind it.
package checkout

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
)

var snippetTemplate = template.Must(template.New("snippet").Parse(
	`{{if .Error}}<p class="paysoncheckout-error">{{.Error}}</p>{{end}}` +
		`<div class="col2-set checkout-group" id="customer_details_payson">` +
		`<div class="paysonceckout-container" style="width:100%;  margin-left:auto; margin-right:auto;">` +
		`{{.Snippet}}</div></div>`,
))

type SessionProvider interface {
	ForOrder(ctx context.Context, orderID uint) (*payson.Checkout, error)
}

type OrderStore interface {
	UpsertOrderFromCart(ctx context.Context, cart models.Cart) (*models.Order, error)
}

type Renderer struct {
	enabled  bool
	orders   OrderStore
	sessions SessionProvider
	log      *slog.Logger
}

func NewRenderer(settings models.GatewaySettings, orders OrderStore, sessions SessionProvider, log *slog.Logger) *Renderer {
	return &Renderer{
		enabled:  settings.Enabled,
		orders:   orders,
		sessions: sessions,
		log:      log.With(slog.String(logging.Component, "checkout")),
	}
}

// Render returns the checkout markup for cart, or "" when the gateway is
// disabled. Payson errors are written into the markup instead of failing;
// only a failure to keep the local order returns an error.
func (r *Renderer) Render(ctx context.Context, cart models.Cart) (string, error) {
	if !r.enabled {
		return "", nil
	}

	order, err := r.orders.UpsertOrderFromCart(ctx, cart)
	if err != nil {
		return "", fmt.Errorf("prepare local order: %w", err)
	}

	var data struct {
		Error   string
		Snippet template.HTML
	}
	co, err := r.sessions.ForOrder(ctx, order.ID)
	if err != nil {
		r.log.Error("checkout session failed", slog.Uint64(logging.OrderID, uint64(order.ID)), slog.String(logging.Error, err.Error()))
		data.Error = err.Error()
	} else {
		// The snippet is markup Payson generated for the hosted iframe.
		data.Snippet = template.HTML(co.Snippet)
	}

	var buf bytes.Buffer
	if err := snippetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render snippet: %w", err)
	}
	return buf.String(), nil
}
