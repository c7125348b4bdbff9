// Package payson is a minimal PaysonCheckout 2.0 REST client. It covers the
// calls the gateway needs: create, retrieve and update a checkout.
package payson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	LiveEndpoint = "https://api.payson.se/2.0/"
	TestEndpoint = "https://test-api.payson.se/2.0/"

	defaultTimeout = 30 * time.Second
)

var ErrMissingCredentials = errors.New("payson: agent id and api key are required")

// Client talks to the Payson API on behalf of one merchant agent.
type Client struct {
	agentID  string
	apiKey   string
	endpoint string
	timeout  time.Duration
}

// NewClient creates a client for the given agent. testMode selects the Payson
// test environment.
func NewClient(agentID, apiKey string, testMode bool) (*Client, error) {
	if agentID == "" || apiKey == "" {
		return nil, ErrMissingCredentials
	}
	endpoint := LiveEndpoint
	if testMode {
		endpoint = TestEndpoint
	}
	return &Client{agentID: agentID, apiKey: apiKey, endpoint: endpoint, timeout: defaultTimeout}, nil
}

// WithEndpoint points the client at a different base URL.
func (c *Client) WithEndpoint(endpoint string) *Client {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	c.endpoint = endpoint
	return c
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do performs op and decodes the reply into result. Replies outside the 2xx
// range are returned as *Error.
func (c *Client) Do(ctx context.Context, result interface{}, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desc := op.Describe()

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(desc.Method)
	req.SetRequestURI(c.endpoint + desc.Path)
	a.BasicAuth(c.agentID, c.apiKey)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if desc.Payload != nil {
		a.JSON(desc.Payload)
	}
	a.Timeout(c.timeoutFor(ctx))

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("payson: %s %s: %w", desc.Method, desc.Path, err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("payson: %s %s: %w", desc.Method, desc.Path, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return decodeError(code, body)
	}
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("payson: decode %s %s: %w", desc.Method, desc.Path, err)
	}
	return nil
}

func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < c.timeout {
			return d
		}
	}
	return c.timeout
}

// CreateCheckout starts a new checkout session.
func (c *Client) CreateCheckout(ctx context.Context, op *CreateCheckout) (*Checkout, error) {
	co := &Checkout{}
	if err := c.Do(ctx, co, op); err != nil {
		return nil, err
	}
	return co, nil
}

// GetCheckout fetches the current state of a checkout.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	co := &Checkout{}
	if err := c.Do(ctx, co, &RetrieveCheckout{CheckoutID: checkoutID}); err != nil {
		return nil, err
	}
	return co, nil
}

// UpdateCheckout replaces the remote checkout with co.
func (c *Client) UpdateCheckout(ctx context.Context, co *Checkout) (*Checkout, error) {
	updated := &Checkout{}
	if err := c.Do(ctx, updated, &UpdateCheckout{Checkout: co}); err != nil {
		return nil, err
	}
	return updated, nil
}

// ShipCheckout marks the checkout as shipped, which captures the reservation.
// co is not modified.
func (c *Client) ShipCheckout(ctx context.Context, co *Checkout) (*Checkout, error) {
	if co == nil || co.ID == "" {
		return nil, errors.New("payson: ship requires a retrieved checkout")
	}
	shipped := *co
	shipped.Status = StatusShipped
	return c.UpdateCheckout(ctx, &shipped)
}
