package models

import "github.com/shopspring/decimal"

// Cart is the session cart as the storefront sends it at checkout review.
type Cart struct {
	Key              string            `json:"key"`      // session cart key
	Currency         string            `json:"currency"` // "SEK" | "EUR"
	Items            []CartItem        `json:"items"`
	ShippingPackages []ShippingPackage `json:"shipping_packages,omitempty"`
	Fees             []CartFee         `json:"fees,omitempty"`
}

type CartItem struct {
	Key       string          `json:"key,omitempty"`
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"` // tax exclusive
	LineTax   decimal.Decimal `json:"line_tax"`
}

type ShippingPackage struct {
	Rates []ShippingRate `json:"rates"`
}

type ShippingRate struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Cost  decimal.Decimal   `json:"cost"`
	Taxes []decimal.Decimal `json:"taxes,omitempty"`
}

type CartFee struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	Amount  decimal.Decimal   `json:"amount"`
	TaxData []decimal.Decimal `json:"tax_data,omitempty"`
}

// FeeTotal is the tax exclusive sum of all cart fees.
func (c Cart) FeeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, f := range c.Fees {
		total = total.Add(f.Amount)
	}
	return total
}
