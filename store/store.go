// Package store persists orders, their metadata and notes, and the gateway
// settings option with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/a2n2k3p4/paysoncheckout-backend/models"
)

var ErrMissingCartKey = errors.New("cart key is required")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Migrate creates or updates every table the gateway uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.ShippingLine{},
		&models.FeeLine{},
		&models.OrderMeta{},
		&models.OrderNote{},
		&models.Option{},
	)
}

// FindOrder loads an order with its lines, metadata and notes.
// gorm.ErrRecordNotFound is returned for unknown ids.
func (s *Store) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items", orderByID).
		Preload("ShippingLines", orderByID).
		Preload("Fees", orderByID).
		Preload("Meta").
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// UpsertOrderFromCart keeps one pending order per cart key. An existing
// pending order gets its lines replaced by the cart's; otherwise a new order
// is created.
func (s *Store) UpsertOrderFromCart(ctx context.Context, cart models.Cart) (*models.Order, error) {
	if cart.Key == "" {
		return nil, ErrMissingCartKey
	}

	var orderID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("cart_key = ? AND status = ?", cart.Key, models.OrderStatusPending).
			Order("id DESC").
			First(&order).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			order = models.Order{
				CartKey:       cart.Key,
				Status:        models.OrderStatusPending,
				PaymentMethod: models.GatewayID,
				Currency:      cart.Currency,
			}
			if err := tx.Create(&order).Error; err != nil {
				return fmt.Errorf("create order: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find pending order: %w", err)
		default:
			if err := tx.Model(&order).Update("currency", cart.Currency).Error; err != nil {
				return fmt.Errorf("update order currency: %w", err)
			}
			for _, line := range []interface{}{&models.OrderItem{}, &models.ShippingLine{}, &models.FeeLine{}} {
				if err := tx.Where("order_id = ?", order.ID).Delete(line).Error; err != nil {
					return fmt.Errorf("clear order lines: %w", err)
				}
			}
		}

		items, shipping, fees := linesFromCart(order.ID, cart)
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
		}
		if len(shipping) > 0 {
			if err := tx.Create(&shipping).Error; err != nil {
				return fmt.Errorf("create shipping lines: %w", err)
			}
		}
		if len(fees) > 0 {
			if err := tx.Create(&fees).Error; err != nil {
				return fmt.Errorf("create fee lines: %w", err)
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindOrder(ctx, orderID)
}

// linesFromCart copies the cart into order lines. Every rate of every
// shipping package is copied; the storefront only sends the chosen rates.
func linesFromCart(orderID uint, cart models.Cart) ([]models.OrderItem, []models.ShippingLine, []models.FeeLine) {
	var items []models.OrderItem
	for _, ci := range cart.Items {
		items = append(items, models.OrderItem{
			OrderID:   orderID,
			Name:      ci.Product.Title,
			Quantity:  ci.Quantity,
			LineTotal: ci.LineTotal,
			LineTax:   ci.LineTax,
			Product:   ci.Product,
		})
	}
	var shipping []models.ShippingLine
	for _, pkg := range cart.ShippingPackages {
		for _, rate := range pkg.Rates {
			shipping = append(shipping, models.ShippingLine{
				OrderID: orderID,
				Name:    rate.Label,
				Cost:    rate.Cost,
				Taxes:   rate.Taxes,
			})
		}
	}
	var fees []models.FeeLine
	for _, f := range cart.Fees {
		fee := models.FeeLine{OrderID: orderID, Name: f.Label, LineTotal: f.Amount}
		for _, t := range f.TaxData {
			fee.LineTax = fee.LineTax.Add(t)
		}
		fees = append(fees, fee)
	}
	return items, shipping, fees
}

func (s *Store) SetTransactionID(ctx context.Context, orderID uint, transactionID string) error {
	return s.updateOrder(ctx, orderID, "transaction_id", transactionID)
}

func (s *Store) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	return s.updateOrder(ctx, orderID, "status", status)
}

func (s *Store) updateOrder(ctx context.Context, orderID uint, column string, value interface{}) error {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetMeta reports the value stored under key and whether it exists.
func (s *Store) GetMeta(ctx context.Context, orderID uint, key string) (string, bool, error) {
	var meta models.OrderMeta
	err := s.DB.WithContext(ctx).Where("order_id = ? AND meta_key = ?", orderID, key).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return meta.Value, true, nil
}

// SetMeta writes key, replacing any previous value (idempotent on order id + key).
func (s *Store) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	meta := models.OrderMeta{OrderID: orderID, Key: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
	}).Create(&meta).Error
}

func (s *Store) AddNote(ctx context.Context, orderID uint, content string) error {
	return s.DB.WithContext(ctx).Create(&models.OrderNote{
		OrderID:   orderID,
		Content:   content,
		CreatedAt: time.Now(),
	}).Error
}

type OrderFilters struct {
	Status        string
	PaymentMethod string
}

func applyOrderFilters(f OrderFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.PaymentMethod != "" {
			db = db.Where("payment_method = ?", f.PaymentMethod)
		}
		return db
	}
}

// ListOrders returns one page of orders, newest first, plus the total number
// of orders matching f.
func (s *Store) ListOrders(ctx context.Context, f OrderFilters, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Scopes(applyOrderFilters(f)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Scopes(applyOrderFilters(f)).
		Preload("Items", orderByID).
		Preload("ShippingLines", orderByID).
		Preload("Fees", orderByID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}
