package utils

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

// InvoiceEmail is everything the booking invoice shows.
type InvoiceEmail struct {
	BookingID        string
	CustomerName     string
	PropertyName     string
	PropertyLocation string
	RoomName         string
	CheckIn          time.Time
	CheckOut         time.Time
	Nights           int
	GuestsCount      int
	SubtotalIdr      int64
	CleaningFeeIdr   int64
	ServiceFeeIdr    int64
	DiscountIdr      int64
	TotalIdr         int64
	PaymentMethod    string
	PaidAt           *time.Time
}

var invoiceFuncs = map[string]any{
	"idr":  FormatIDR,
	"date": func(t time.Time) string { return t.Format("02 Jan 2006") },
	"paid": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("02 Jan 2006 15:04 MST")
	},
}

var invoiceText = texttemplate.Must(texttemplate.New("invoice.txt").Funcs(invoiceFuncs).Parse(
	`Hi {{.CustomerName}},

Your booking {{.BookingID}} is confirmed.

Property : {{.PropertyName}} ({{.PropertyLocation}})
Room     : {{.RoomName}}
Stay     : {{date .CheckIn}} - {{date .CheckOut}} ({{.Nights}} nights, {{.GuestsCount}} guests)

Subtotal     {{idr .SubtotalIdr}}
Cleaning fee {{idr .CleaningFeeIdr}}
Service fee  {{idr .ServiceFeeIdr}}
Discount     {{idr .DiscountIdr}}
Total        {{idr .TotalIdr}}

Paid via {{.PaymentMethod}} at {{paid .PaidAt}}
`))

var invoiceHTML = htmltemplate.Must(htmltemplate.New("invoice.html").Funcs(invoiceFuncs).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Booking invoice</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
td { padding:4px 8px; }
.total td { font-weight:bold; border-top:1px solid #e6eef6; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Booking confirmed</h2>
    <p>Hi {{.CustomerName}},</p>
    <p>Thank you for your payment. Booking <strong>{{.BookingID}}</strong> is confirmed.</p>
    <p>{{.PropertyName}}<br>{{.PropertyLocation}}<br>{{.RoomName}}</p>
    <p>{{date .CheckIn}} - {{date .CheckOut}} &middot; {{.Nights}} nights &middot; {{.GuestsCount}} guests</p>
    <table>
      <tr><td>Subtotal</td><td>{{idr .SubtotalIdr}}</td></tr>
      <tr><td>Cleaning fee</td><td>{{idr .CleaningFeeIdr}}</td></tr>
      <tr><td>Service fee</td><td>{{idr .ServiceFeeIdr}}</td></tr>
      <tr><td>Discount</td><td>{{idr .DiscountIdr}}</td></tr>
      <tr class="total"><td>Total</td><td>{{idr .TotalIdr}}</td></tr>
    </table>
    <p>Paid via {{.PaymentMethod}} at {{paid .PaidAt}}</p>
  </div>
</div>
</body>
</html>`))

// FormatIDR renders an amount the Indonesian way, e.g. "Rp 2.430.000".
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-Rp " + sb.String()
	}
	return "Rp " + sb.String()
}

// BuildInvoiceMessage renders a multipart plain+HTML invoice ready for SMTP.
func BuildInvoiceMessage(from, to string, inv InvoiceEmail) ([]byte, error) {
	var plain, html bytes.Buffer
	if err := invoiceText.Execute(&plain, inv); err != nil {
		return nil, fmt.Errorf("render invoice text: %w", err)
	}
	if err := invoiceHTML.Execute(&html, inv); err != nil {
		return nil, fmt.Errorf("render invoice html: %w", err)
	}

	safe := func(s string) string {
		return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
	}
	boundary := "----=_INVOICE_EMAIL_BOUNDARY"

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", safe(from)))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", safe(to)))
	sb.WriteString(fmt.Sprintf("Subject: Booking confirmed - %s\r\n", safe(inv.BookingID)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plain.String() + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(html.String() + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(sb.String()), nil
}

// SMTPMailer delivers invoices over SMTP. Without credentials it only logs a mock email.
type SMTPMailer struct {
	Config SMTPConfig
	Logger *slog.Logger

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{Config: cfg, Logger: logger, send: smtp.SendMail}
}

func (m *SMTPMailer) SendInvoice(ctx context.Context, to string, inv InvoiceEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.Config.Enabled() {
		m.Logger.Info("[MOCK EMAIL] invoice", "to", MaskEmail(to), "booking_id", inv.BookingID, "total", inv.TotalIdr)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", m.Config.FromName, m.Config.Username)
	msg, err := BuildInvoiceMessage(from, to, inv)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.Config.Username, m.Config.Password, m.Config.Host)
	addr := fmt.Sprintf("%s:%s", m.Config.Host, m.Config.Port)
	if err := m.send(addr, auth, m.Config.Username, []string{to}, msg); err != nil {
		return fmt.Errorf("send invoice to %s: %w", MaskEmail(to), err)
	}

	m.Logger.Info("invoice email sent", "to", MaskEmail(to), "booking_id", inv.BookingID)
	return nil
}
