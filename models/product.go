package models

// Product is the catalogue snapshot a cart or order line refers to.
type Product struct {
	ID          uint   `json:"id"`
	VariationID uint   `json:"variation_id,omitempty"`
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	EAN         string `json:"ean,omitempty"`
	Permalink   string `json:"permalink,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}
