package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	productionSnapURL = "https://app.midtrans.com/snap/v1/transactions"
	sandboxAPIURL     = "https://api.sandbox.midtrans.com"
	productionAPIURL  = "https://api.midtrans.com"
)

var DefaultEnabledPayments = []string{
	"credit_card", "bca_va", "bni_va", "bri_va", "permata_va", "other_va", "gopay", "shopeepay", "qris",
}

var (
	ErrInvalidSignature = errors.New("midtrans: invalid notification signature")
	ErrNotConfigured    = errors.New("midtrans: server key is not configured")
)

type Config struct {
	ServerKey       string
	Production      bool
	Timeout         time.Duration
	FrontendURL     string
	EnabledPayments []string

	// SnapURL and APIURL override the Midtrans endpoints.
	SnapURL string
	APIURL  string
}

// Client talks to Midtrans Snap (hosted checkout) and the Core status API.
type Client struct {
	cfg     Config
	http    *http.Client
	snapURL string
	apiURL  string
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if len(cfg.EnabledPayments) == 0 {
		cfg.EnabledPayments = DefaultEnabledPayments
	}

	snapURL, apiURL := sandboxSnapURL, sandboxAPIURL
	if cfg.Production {
		snapURL, apiURL = productionSnapURL, productionAPIURL
	}
	if cfg.SnapURL != "" {
		snapURL = cfg.SnapURL
	}
	if cfg.APIURL != "" {
		apiURL = strings.TrimRight(cfg.APIURL, "/")
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		snapURL: snapURL,
		apiURL:  apiURL,
	}
}

type CheckoutRequest struct {
	OrderID       string
	AmountIdr     int64
	CustomerName  string
	CustomerEmail string
	ItemName      string
	// ExpiryMinutes limits how long the checkout page accepts payment. Zero keeps the Midtrans default.
	ExpiryMinutes int
}

type CheckoutSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

type snapItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
	} `json:"customer_details"`
	ItemDetails     []snapItem `json:"item_details"`
	EnabledPayments []string   `json:"enabled_payments"`
	Callbacks       *struct {
		Finish string `json:"finish"`
	} `json:"callbacks,omitempty"`
	Expiry *struct {
		Unit     string `json:"unit"`
		Duration int    `json:"duration"`
	} `json:"expiry,omitempty"`
}

// CreateCheckout opens a Snap transaction whose order_id is the booking id.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if c.cfg.ServerKey == "" {
		return nil, ErrNotConfigured
	}

	var body snapRequest
	body.TransactionDetails.OrderID = req.OrderID
	body.TransactionDetails.GrossAmount = req.AmountIdr
	body.CustomerDetails.FirstName = req.CustomerName
	body.CustomerDetails.Email = req.CustomerEmail
	body.ItemDetails = []snapItem{{
		ID:       req.OrderID,
		Price:    req.AmountIdr,
		Quantity: 1,
		Name:     truncate(req.ItemName, 50),
	}}
	body.EnabledPayments = c.cfg.EnabledPayments
	if c.cfg.FrontendURL != "" {
		body.Callbacks = &struct {
			Finish string `json:"finish"`
		}{Finish: strings.TrimRight(c.cfg.FrontendURL, "/") + "/booking/success?order_id=" + url.QueryEscape(req.OrderID)}
	}
	if req.ExpiryMinutes > 0 {
		body.Expiry = &struct {
			Unit     string `json:"unit"`
			Duration int    `json:"duration"`
		}{Unit: "minutes", Duration: req.ExpiryMinutes}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.snapURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	c.authorize(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans create transaction: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Token         string   `json:"token"`
		RedirectURL   string   `json:"redirect_url"`
		ErrorMessages []string `json:"error_messages"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("midtrans create transaction: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans create transaction failed: %s %s", resp.Status, strings.Join(out.ErrorMessages, "; "))
	}
	if out.Token == "" {
		return nil, errors.New("midtrans: empty snap token")
	}
	return &CheckoutSession{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}

// TransactionStatus polls the status API for an order. The payload has the notification shape.
func (c *Client) TransactionStatus(ctx context.Context, orderID string) (*Notification, error) {
	if c.cfg.ServerKey == "" {
		return nil, ErrNotConfigured
	}
	endpoint := fmt.Sprintf("%s/v2/%s/status", c.apiURL, url.PathEscape(orderID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans transaction status: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("midtrans transaction status: read body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans transaction status failed: %s", resp.Status)
	}

	n, err := decodeNotification(raw)
	if err != nil {
		return nil, err
	}
	// the status API reports lookup failures in the body with HTTP 200
	if n.StatusCode == "404" || n.TransactionStatus == "" {
		return nil, fmt.Errorf("midtrans transaction status: order %s not found", orderID)
	}
	return n, nil
}

// ParseNotification decodes a webhook body and checks its signature_key.
func (c *Client) ParseNotification(raw []byte) (*Notification, error) {
	if c.cfg.ServerKey == "" {
		return nil, ErrNotConfigured
	}
	n, err := decodeNotification(raw)
	if err != nil {
		return nil, err
	}
	if n.OrderID == "" {
		return nil, errors.New("midtrans: notification missing order_id")
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, c.cfg.ServerKey)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(n.SignatureKey)), []byte(want)) != 1 {
		return nil, ErrInvalidSignature
	}
	return n, nil
}

// Signature is sha512(order_id + status_code + gross_amount + server_key), hex encoded.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (c *Client) authorize(r *http.Request) {
	r.SetBasicAuth(c.cfg.ServerKey, "")
	r.Header.Set("Accept", "application/json")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
