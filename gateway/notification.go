package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Notification is a Midtrans HTTP notification or status API response.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`

	Raw json.RawMessage `json:"-"`
}

func decodeNotification(raw []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("midtrans: malformed notification: %w", err)
	}
	n.Raw = append(json.RawMessage(nil), raw...)
	return &n, nil
}

// Amount parses gross_amount ("2430000.00").
func (n Notification) Amount() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(n.GrossAmount), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("midtrans: invalid gross_amount %q", n.GrossAmount)
	}
	return v, nil
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected" // captured but not accepted by fraud screening
	OutcomeCanceled Outcome = "canceled"
	OutcomeExpired  Outcome = "expired"
	OutcomePending  Outcome = "pending"
	OutcomeIgnored  Outcome = "ignored"
)

func (n Notification) Outcome() Outcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		if strings.EqualFold(n.FraudStatus, "accept") {
			return OutcomeSuccess
		}
		return OutcomeRejected
	case "settlement":
		return OutcomeSuccess
	case "cancel", "deny":
		return OutcomeCanceled
	case "expire":
		return OutcomeExpired
	case "pending":
		return OutcomePending
	}
	return OutcomeIgnored
}
