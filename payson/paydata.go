package payson

// Currency codes accepted by the gateway. SEK is the domestic default.
const (
	CurrencySEK = "SEK"
	CurrencyEUR = "EUR"
)

// Order item types.
const (
	ItemPhysical = "physical"
	ItemService  = "service"
	ItemFee      = "fee"
	ItemDiscount = "discount"
)

// PayData is the order part of a checkout: a currency and its priced lines.
type PayData struct {
	Currency               string      `json:"currency"`
	Items                  []OrderItem `json:"items"`
	TotalPriceExcludingTax float64     `json:"totalPriceExcludingTax,omitempty"`
	TotalPriceIncludingTax float64     `json:"totalPriceIncludingTax,omitempty"`
	TotalTaxAmount         float64     `json:"totalTaxAmount,omitempty"`
	TotalCreditedAmount    float64     `json:"totalCreditedAmount,omitempty"`
}

// NewPayData returns an empty PayData for currency.
func NewPayData(currency string) *PayData {
	return &PayData{Currency: currency, Items: []OrderItem{}}
}

// AddOrderItem appends item, keeping insertion order.
func (p *PayData) AddOrderItem(item OrderItem) {
	p.Items = append(p.Items, item)
}

// OrderItem is one priced line. UnitPrice includes tax; TaxRate is a fraction
// (0.25 for 25%).
type OrderItem struct {
	ItemID       string  `json:"itemId,omitempty"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     float64 `json:"quantity"`
	TaxRate      float64 `json:"taxRate"`
	Reference    string  `json:"reference"`
	Type         string  `json:"type"`
	DiscountRate float64 `json:"discountRate"`
	EAN          string  `json:"ean,omitempty"`
	URI          string  `json:"uri,omitempty"`
	ImageURI     string  `json:"imageUri,omitempty"`
}
