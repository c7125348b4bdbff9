// Package capture ships PaysonCheckout reservations when their store order is
// completed.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
)

// Result says what a capture attempt did.
type Result string

const (
	ResultNotPayson       Result = "not_payson"
	ResultAlreadyCaptured Result = "already_captured"
	ResultDisabled        Result = "disabled"
	ResultCaptured        Result = "captured"
	ResultNotCaptured     Result = "not_captured"
	ResultFailed          Result = "failed"
)

// Order notes.
const (
	NoteAlreadyCaptured = "Could not capture PaysonCheckout reservation, PaysonCheckout reservation is already captured."
	NoteCaptured        = "PaysonCheckout reservation was successfully captured, checkout ID: %s."
	NoteNotCaptured     = "PaysonCheckout reservation could not be captured."
	NoteFailed          = "PaysonCheckout reservation could not be captured, reason: %s."
)

type Store interface {
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	GetMeta(ctx context.Context, orderID uint, key string) (string, bool, error)
	SetMeta(ctx context.Context, orderID uint, key, value string) error
	AddNote(ctx context.Context, orderID uint, content string) error
}

type PaymentAPI interface {
	GetCheckout(ctx context.Context, checkoutID string) (*payson.Checkout, error)
	ShipCheckout(ctx context.Context, co *payson.Checkout) (*payson.Checkout, error)
}

type Service struct {
	store    Store
	api      PaymentAPI
	settings models.GatewaySettings
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, api PaymentAPI, settings models.GatewaySettings, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		api:      api,
		settings: settings,
		log:      log.With(slog.String(logging.Component, "capture")),
		now:      time.Now,
	}
}

// Capture ships the reservation behind orderID. Remote failures end up as an
// order note and ResultFailed; the error return is reserved for local storage
// problems.
//
// The captured flag is read and later written without a lock, so two
// completions of the same order racing each other can both ship.
func (s *Service) Capture(ctx context.Context, orderID uint) (Result, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load order %d: %w", orderID, err)
	}

	if order.PaymentMethod != models.GatewayID {
		return ResultNotPayson, nil
	}

	_, captured, err := s.store.GetMeta(ctx, orderID, models.MetaReservationCaptured)
	if err != nil {
		return "", fmt.Errorf("read capture flag: %w", err)
	}
	if captured {
		if err := s.store.AddNote(ctx, orderID, NoteAlreadyCaptured); err != nil {
			return "", fmt.Errorf("add note: %w", err)
		}
		return ResultAlreadyCaptured, nil
	}

	if !s.settings.OrderManagement {
		return ResultDisabled, nil
	}

	log := s.log.With(slog.Uint64(logging.OrderID, uint64(orderID)), slog.String(logging.CheckoutID, order.TransactionID))

	shipped, err := s.ship(ctx, order.TransactionID)
	if err != nil {
		log.Error("capture failed", slog.String(logging.Error, err.Error()))
		if err := s.store.AddNote(ctx, orderID, fmt.Sprintf(NoteFailed, err.Error())); err != nil {
			return "", fmt.Errorf("add note: %w", err)
		}
		return ResultFailed, nil
	}

	if shipped.Status != payson.StatusShipped {
		log.Info("reservation not captured", slog.String(logging.Status, shipped.Status))
		if err := s.store.AddNote(ctx, orderID, NoteNotCaptured); err != nil {
			return "", fmt.Errorf("add note: %w", err)
		}
		return ResultNotCaptured, nil
	}

	if err := s.store.SetMeta(ctx, orderID, models.MetaReservationCaptured, s.now().Format(models.MetaTimeLayout)); err != nil {
		return "", fmt.Errorf("set capture flag: %w", err)
	}
	if err := s.store.SetMeta(ctx, orderID, models.MetaOrderStatus, shipped.Status); err != nil {
		return "", fmt.Errorf("set order status meta: %w", err)
	}
	if err := s.store.AddNote(ctx, orderID, fmt.Sprintf(NoteCaptured, shipped.ID)); err != nil {
		return "", fmt.Errorf("add note: %w", err)
	}
	log.Info("reservation captured")
	return ResultCaptured, nil
}

func (s *Service) ship(ctx context.Context, checkoutID string) (*payson.Checkout, error) {
	co, err := s.api.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	return s.api.ShipCheckout(ctx, co)
}
