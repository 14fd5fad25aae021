package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-backend/gateway"
)

const serverKey = "SB-Mid-server-test"

func TestCreateCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, serverKey, user)
		assert.Empty(t, pass)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		td := body["transaction_details"].(map[string]any)
		assert.Equal(t, "booking-1", td["order_id"])
		assert.Equal(t, float64(2430000), td["gross_amount"])
		cb := body["callbacks"].(map[string]any)
		assert.Equal(t, "https://stay.example.com/booking/success?order_id=booking-1", cb["finish"])
		exp := body["expiry"].(map[string]any)
		assert.Equal(t, float64(1440), exp["duration"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-token","redirect_url":"https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}`))
	}))
	defer srv.Close()

	c := gateway.NewClient(gateway.Config{ServerKey: serverKey, SnapURL: srv.URL, FrontendURL: "https://stay.example.com/"})
	sess, err := c.CreateCheckout(context.Background(), gateway.CheckoutRequest{
		OrderID:       "booking-1",
		AmountIdr:     2430000,
		CustomerName:  "Sari",
		CustomerEmail: "sari@example.com",
		ItemName:      "Standard Room - 3 nights",
		ExpiryMinutes: 1440,
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", sess.Token)
	assert.Contains(t, sess.RedirectURL, "snap-token")
}

func TestCreateCheckoutSurfacesGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_messages":["transaction_details.order_id has already been taken"]}`))
	}))
	defer srv.Close()

	c := gateway.NewClient(gateway.Config{ServerKey: serverKey, SnapURL: srv.URL})
	_, err := c.CreateCheckout(context.Background(), gateway.CheckoutRequest{OrderID: "b", AmountIdr: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been taken")
}

func TestCreateCheckoutHonoursTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := gateway.NewClient(gateway.Config{ServerKey: serverKey, SnapURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.CreateCheckout(context.Background(), gateway.CheckoutRequest{OrderID: "b", AmountIdr: 1})
	require.Error(t, err)
}

func TestCreateCheckoutRequiresServerKey(t *testing.T) {
	c := gateway.NewClient(gateway.Config{})
	_, err := c.CreateCheckout(context.Background(), gateway.CheckoutRequest{OrderID: "b"})
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func signedBody(orderID, status, fraud, amount, key string) []byte {
	return []byte(fmt.Sprintf(`{"order_id":%q,"transaction_id":"tx-1","transaction_status":%q,"fraud_status":%q,"payment_type":"bank_transfer","status_code":"200","gross_amount":%q,"signature_key":%q}`,
		orderID, status, fraud, amount, gateway.Signature(orderID, "200", amount, key)))
}

func TestParseNotification(t *testing.T) {
	c := gateway.NewClient(gateway.Config{ServerKey: serverKey})

	n, err := c.ParseNotification(signedBody("booking-1", "settlement", "", "2430000.00", serverKey))
	require.NoError(t, err)
	assert.Equal(t, "booking-1", n.OrderID)
	assert.Equal(t, "tx-1", n.TransactionID)
	assert.Equal(t, gateway.OutcomeSuccess, n.Outcome())
	amount, err := n.Amount()
	require.NoError(t, err)
	assert.Equal(t, float64(2430000), amount)
	assert.NotEmpty(t, n.Raw)

	_, err = c.ParseNotification(signedBody("booking-1", "settlement", "", "2430000.00", "other-key"))
	assert.ErrorIs(t, err, gateway.ErrInvalidSignature)

	_, err = c.ParseNotification([]byte(`not json`))
	assert.Error(t, err)

	unconfigured := gateway.NewClient(gateway.Config{})
	_, err = unconfigured.ParseNotification(signedBody("booking-1", "settlement", "", "2430000.00", ""))
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestNotificationOutcome(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          gateway.Outcome
	}{
		{"capture", "accept", gateway.OutcomeSuccess},
		{"capture", "challenge", gateway.OutcomeRejected},
		{"settlement", "", gateway.OutcomeSuccess},
		{"cancel", "", gateway.OutcomeCanceled},
		{"deny", "", gateway.OutcomeCanceled},
		{"expire", "", gateway.OutcomeExpired},
		{"pending", "", gateway.OutcomePending},
		{"refund", "", gateway.OutcomeIgnored},
	}
	for _, tc := range cases {
		n := gateway.Notification{TransactionStatus: tc.status, FraudStatus: tc.fraud}
		assert.Equal(t, tc.want, n.Outcome(), tc.status+"/"+tc.fraud)
	}
}

func TestTransactionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/booking-1/status":
			_, _ = w.Write([]byte(`{"order_id":"booking-1","transaction_id":"tx-9","transaction_status":"settlement","status_code":"200","gross_amount":"2430000.00"}`))
		default:
			_, _ = w.Write([]byte(`{"status_code":"404","status_message":"Transaction doesn't exist."}`))
		}
	}))
	defer srv.Close()

	c := gateway.NewClient(gateway.Config{ServerKey: serverKey, APIURL: srv.URL})
	n, err := c.TransactionStatus(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-9", n.TransactionID)
	assert.Equal(t, gateway.OutcomeSuccess, n.Outcome())

	_, err = c.TransactionStatus(context.Background(), "missing")
	assert.Error(t, err)
}
