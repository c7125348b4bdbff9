package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/a2n2k3p4/paysoncheckout-backend/config"
	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/orderlines"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
)

type Store interface {
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	UpsertOrderFromCart(ctx context.Context, cart models.Cart) (*models.Order, error)
	SetTransactionID(ctx context.Context, orderID uint, transactionID string) error
}

type PaymentAPI interface {
	CreateCheckout(ctx context.Context, op *payson.CreateCheckout) (*payson.Checkout, error)
	GetCheckout(ctx context.Context, checkoutID string) (*payson.Checkout, error)
	UpdateCheckout(ctx context.Context, co *payson.Checkout) (*payson.Checkout, error)
}

// Sessions hands out the Payson checkout for a local order.
type Sessions struct {
	store      Store
	api        PaymentAPI
	translator orderlines.Translator
	settings   models.GatewaySettings
	uris       config.MerchantURIs
	log        *slog.Logger
}

func NewSessions(store Store, api PaymentAPI, settings models.GatewaySettings, uris config.MerchantURIs, log *slog.Logger) *Sessions {
	return &Sessions{
		store:    store,
		api:      api,
		settings: settings,
		uris:     uris,
		log:      log.With(slog.String(logging.Component, "checkout")),
	}
}

// ForOrder returns a checkout carrying the order's current lines. A checkout
// the order already points at is updated while the customer has not started
// paying; any other state gets a fresh checkout.
func (s *Sessions) ForOrder(ctx context.Context, orderID uint) (*payson.Checkout, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	lines := s.translator.OrderLines(order)

	if order.TransactionID != "" {
		co, err := s.api.GetCheckout(ctx, order.TransactionID)
		switch {
		case err != nil:
			s.log.Warn("existing checkout unavailable, creating a new one",
				slog.Uint64(logging.OrderID, uint64(order.ID)),
				slog.String(logging.CheckoutID, order.TransactionID),
				slog.String(logging.Error, err.Error()))
		case co.Status == payson.StatusCreated:
			co.Order = *lines
			return s.api.UpdateCheckout(ctx, co)
		}
	}

	co, err := s.api.CreateCheckout(ctx, &payson.CreateCheckout{
		Merchant: s.merchant(order),
		Order:    *lines,
		Gui:      &payson.Gui{ColorScheme: s.settings.ColorScheme, Locale: s.settings.Locale},
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTransactionID(ctx, order.ID, co.ID); err != nil {
		return nil, fmt.Errorf("store checkout id: %w", err)
	}
	s.log.Debug("checkout created", slog.Uint64(logging.OrderID, uint64(order.ID)), slog.String(logging.CheckoutID, co.ID))
	return co, nil
}

func (s *Sessions) merchant(order *models.Order) payson.Merchant {
	id := strconv.FormatUint(uint64(order.ID), 10)
	return payson.Merchant{
		CheckoutURI:     s.uris.Checkout,
		ConfirmationURI: withQuery(s.uris.Confirmation, "order_id", id),
		NotificationURI: withQuery(s.uris.Notification, "order_id", id),
		TermsURI:        s.uris.Terms,
		Reference:       id,
	}
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
