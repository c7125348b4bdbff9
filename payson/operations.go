package payson

import (
	"net/http"
	"net/url"
)

// Description says how an operation maps onto an HTTP request.
type Description struct {
	Method  string
	Path    string
	Payload interface{}
}

// Operation is anything Client.Do can execute.
type Operation interface {
	Describe() *Description
}

// CreateCheckout represents the `POST /Checkouts` call.
type CreateCheckout struct {
	Merchant Merchant  `json:"merchant"`
	Order    PayData   `json:"order"`
	Gui      *Gui      `json:"gui,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

func (op *CreateCheckout) Describe() *Description {
	return &Description{Method: http.MethodPost, Path: "Checkouts", Payload: op}
}

// RetrieveCheckout represents the `GET /Checkouts/:id` call.
type RetrieveCheckout struct {
	CheckoutID string `json:"-"`
}

func (op *RetrieveCheckout) Describe() *Description {
	return &Description{Method: http.MethodGet, Path: "Checkouts/" + url.PathEscape(op.CheckoutID)}
}

// UpdateCheckout represents the `PUT /Checkouts/:id` call. Payson expects the
// complete checkout object back, so the whole value is sent.
type UpdateCheckout struct {
	Checkout *Checkout
}

func (op *UpdateCheckout) Describe() *Description {
	return &Description{
		Method:  http.MethodPut,
		Path:    "Checkouts/" + url.PathEscape(op.Checkout.ID),
		Payload: op.Checkout,
	}
}
