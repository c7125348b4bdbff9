// Package orderlines converts placed orders and session carts into Payson
// order lines.
package orderlines

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
)

const (
	ReferenceShipping = "Shipping"
	ReferenceFee      = "Fee"
)

// Translator builds PayData. It holds no state; the zero value is ready to use.
type Translator struct{}

// Lines translates order when it is non-nil and cart otherwise.
func (t Translator) Lines(order *models.Order, cart models.Cart) *payson.PayData {
	if order != nil {
		return t.OrderLines(order)
	}
	return t.CartLines(cart)
}

// OrderLines translates a placed order. Products come first, then shipping,
// then fees, each in the order the order holds them.
func (t Translator) OrderLines(order *models.Order) *payson.PayData {
	pd := payson.NewPayData(currencyCode(order.Currency))

	for _, item := range order.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		unitNet := perUnit(item.LineTotal, qty)
		unitTax := perUnit(item.LineTax, qty)

		vat := decimal.Zero
		if !item.LineTax.IsZero() {
			vat = Rate(unitTax.Round(2), unitNet.Round(2))
		}
		pd.AddOrderItem(payson.OrderItem{
			Name:      item.Name,
			UnitPrice: unitNet.Add(unitTax).Round(2).InexactFloat64(),
			Quantity:  float64(item.Quantity),
			TaxRate:   vat.InexactFloat64(),
			Reference: ItemReference(item.Product),
			Type:      payson.ItemPhysical,
		})
	}

	if order.ShippingTotal().GreaterThan(decimal.Zero) {
		for _, s := range order.ShippingLines {
			tax := s.TotalTax()
			pd.AddOrderItem(payson.OrderItem{
				Name:      s.Name,
				UnitPrice: s.Cost.Add(tax).InexactFloat64(),
				Quantity:  1,
				TaxRate:   Rate(tax, s.Cost).InexactFloat64(),
				Reference: ReferenceShipping,
				Type:      payson.ItemPhysical,
			})
		}
	}

	for _, fee := range order.Fees {
		pd.AddOrderItem(feeItem(fee.Name, fee.LineTotal, fee.LineTax))
	}

	return pd
}

// CartLines translates the session cart.
func (t Translator) CartLines(cart models.Cart) *payson.PayData {
	pd := payson.NewPayData(currencyCode(cart.Currency))

	for _, item := range cart.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		pd.AddOrderItem(payson.OrderItem{
			Name:      item.Product.Title,
			UnitPrice: perUnit(item.LineTotal.Add(item.LineTax), qty).InexactFloat64(),
			Quantity:  float64(item.Quantity),
			TaxRate:   Rate(item.LineTax, item.LineTotal).InexactFloat64(),
			Reference: ItemReference(item.Product),
			Type:      payson.ItemPhysical,
			EAN:       item.Product.EAN,
			URI:       item.Product.Permalink,
			ImageURI:  item.Product.ImageURL,
		})
	}

	for _, pkg := range cart.ShippingPackages {
		for _, rate := range pkg.Rates {
			tax := decimal.Sum(decimal.Zero, rate.Taxes...)
			pd.AddOrderItem(payson.OrderItem{
				Name:      rate.Label,
				UnitPrice: rate.Cost.Add(tax).InexactFloat64(),
				Quantity:  1,
				TaxRate:   Rate(tax, rate.Cost).InexactFloat64(),
				Reference: ReferenceShipping,
				Type:      payson.ItemPhysical,
			})
		}
	}

	if cart.FeeTotal().GreaterThan(decimal.Zero) {
		for _, fee := range cart.Fees {
			pd.AddOrderItem(feeItem(fee.Label, fee.Amount, decimal.Sum(decimal.Zero, fee.TaxData...)))
		}
	}

	return pd
}

func feeItem(name string, total, tax decimal.Decimal) payson.OrderItem {
	return payson.OrderItem{
		Name:      name,
		UnitPrice: total.Add(tax).Round(2).InexactFloat64(),
		Quantity:  1,
		TaxRate:   Rate(tax, total).InexactFloat64(),
		Reference: ReferenceFee,
		Type:      payson.ItemPhysical,
	}
}

// Rate returns tax as a fraction of net, rounded to two decimals. A zero net
// amount yields zero.
func Rate(tax, net decimal.Decimal) decimal.Decimal {
	if net.IsZero() {
		return decimal.Zero
	}
	return tax.Div(net).Round(2)
}

// ItemReference picks the reference sent for a product: its SKU, else the
// variation id, else the product id.
func ItemReference(p models.Product) string {
	switch {
	case p.SKU != "":
		return p.SKU
	case p.VariationID != 0:
		return strconv.FormatUint(uint64(p.VariationID), 10)
	default:
		return strconv.FormatUint(uint64(p.ID), 10)
	}
}

func currencyCode(currency string) string {
	if currency == payson.CurrencyEUR {
		return payson.CurrencyEUR
	}
	return payson.CurrencySEK
}

func perUnit(amount, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return amount.Div(qty)
}
