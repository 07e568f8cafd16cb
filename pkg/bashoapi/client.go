package bashoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/types"
)

const (
	defaultTimeout             = 10 * time.Second
	responseBodyReadLimit      = 1 << 20
	errorBodyReadLimit   int64 = 4096
	sessionHeader              = "X-Cart-Session"
)

const (
	pathProducts         = "api/products/"
	pathWorkshops        = "api/experiences/workshops/"
	pathWorkshopRegister = "api/experiences/workshops/register/"
	pathProductCheckout  = "api/orders/checkout/product/"
	pathPaymentVerify    = "api/orders/payment/verify/"
	pathCartClear        = "api/orders/cart/clear/"
)

var errBaseURLRequired = errors.New("basho backend base url is required")

// Client talks to the Basho backend API (catalog, workshop registration and
// product orders).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid basho backend base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// WorkshopRegistration is the reservation request for a workshop slot.
type WorkshopRegistration struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	Workshop             types.ID `json:"-"`
	Slot                 types.ID `json:"-"`
	NumberOfParticipants int      `json:"number_of_participants"`
	SpecialRequests      string   `json:"special_requests"`
	GSTNumber            string   `json:"gst_number,omitempty"`
}

// MarshalJSON sends workshop and slot ids in the form the backend issued them.
func (r WorkshopRegistration) MarshalJSON() ([]byte, error) {
	type plain WorkshopRegistration
	return json.Marshal(struct {
		plain
		Workshop any `json:"workshop"`
		Slot     any `json:"slot"`
	}{
		plain:    plain(r),
		Workshop: r.Workshop.Wire(),
		Slot:     r.Slot.Wire(),
	})
}

// RegistrationReceipt is returned once the backend has reserved the slot and
// opened a payment order.
type RegistrationReceipt struct {
	RegistrationID  types.ID `json:"registration_id"`
	RazorpayOrderID string   `json:"razorpay_order_id"`
	Amount          int64    `json:"amount"`
}

type Customer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

type OrderItem struct {
	ID       types.ID `json:"-"`
	Quantity int      `json:"qty"`
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       any `json:"id"`
		Quantity int `json:"qty"`
	}{ID: i.ID.Wire(), Quantity: i.Quantity})
}

type ProductOrderRequest struct {
	Customer Customer    `json:"customer"`
	Items    []OrderItem `json:"items"`
}

// ProductOrder carries what the payment widget needs to collect payment.
// Amount is in paise.
type ProductOrder struct {
	OrderID         types.ID `json:"order_id"`
	PaymentOrderID  types.ID `json:"payment_order_id"`
	RazorpayOrderID string   `json:"razorpay_order_id"`
	Amount          int64    `json:"amount"`
	Currency        string   `json:"currency"`
	Key             string   `json:"key"`
}

// PaymentVerification is the signed result handed back by the payment widget.
type PaymentVerification struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// FetchProducts returns the raw product list document.
func (c *Client) FetchProducts(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, pathProducts, "product list")
}

// FetchProduct returns the raw product document. A 404 maps to CodeNotFound.
func (c *Client) FetchProduct(ctx context.Context, id string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.getRaw(ctx, pathProducts+url.PathEscape(trimmed)+"/", "product")
}

// FetchWorkshops returns the raw workshop list document.
func (c *Client) FetchWorkshops(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, pathWorkshops, "workshop list")
}

// RegisterWorkshop reserves a slot. A rejected registration comes back as
// CodeConflict carrying the backend's message when it sent one.
func (c *Client) RegisterWorkshop(ctx context.Context, req WorkshopRegistration) (*RegistrationReceipt, error) {
	var receipt RegistrationReceipt
	if err := c.postJSON(ctx, pathWorkshopRegister, "", req, &receipt, "workshop registration"); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CreateProductOrder opens a product order for the cart contents.
func (c *Client) CreateProductOrder(ctx context.Context, sessionID string, req ProductOrderRequest) (*ProductOrder, error) {
	var order ProductOrder
	if err := c.postJSON(ctx, pathProductCheckout, sessionID, req, &order, "product order"); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment forwards the payment signature for server-side verification.
func (c *Client) VerifyPayment(ctx context.Context, req PaymentVerification) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.postJSON(ctx, pathPaymentVerify, "", req, &resp, "payment verification"); err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != "success" {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment verification failed")
	}
	return nil
}

// ClearCart empties the backend-side cart for the session.
func (c *Client) ClearCart(ctx context.Context, sessionID string) error {
	return c.postJSON(ctx, pathCartClear, sessionID, nil, nil, "cart clear")
}

func (c *Client) getRaw(ctx context.Context, path, what string) (json.RawMessage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "basho backend client not configured")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+what+" request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+what+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, what)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+what+" response")
	}
	if !json.Valid(body) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, what+" response is not JSON")
	}
	return json.RawMessage(body), nil
}

func (c *Client) postJSON(ctx context.Context, path, sessionID string, payload, dest any, what string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "basho backend client not configured")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal "+what+" request")
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+what+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		httpReq.Header.Set(sessionHeader, sessionID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+what+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, what)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+what+" response")
	}
	return nil
}

// statusError maps a non-2xx backend response. A JSON body with an "error"
// or "detail" message becomes a conflict carrying that message; anything
// else is reported as a dependency failure.
func statusError(resp *http.Response, what string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, what+" not found")
	}

	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, what+" request failed")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, what+" request failed")
	}

	message := strings.TrimSpace(body.Error)
	if message == "" {
		message = strings.TrimSpace(body.Detail)
	}
	if message == "" {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, what+" rejected").WithDetails(json.RawMessage(raw))
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, message).WithDetails(map[string]any{"backend_message": message})
}

// BackendMessage returns the message the backend attached to a rejected
// request, if any.
func BackendMessage(err error) (string, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		return "", false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := details["backend_message"].(string)
	return msg, ok && msg != ""
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
