// Package mail sends order notification emails over SMTP: a confirmation to
// the customer and an alert to the shop owners. Templates are written in
// nynorsk to match the storefront.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// OrderInfo is the data rendered into the notification templates.
type OrderInfo struct {
	OrderID       string
	ProductName   string
	Quantity      int
	DeliveryLabel string
	TotalPrice    int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Zip           string
	City          string
}

// Sender delivers order notifications. Implementations must not block the
// checkout flow on failure; callers log and continue.
type Sender interface {
	// SendOrderConfirmation emails the customer a receipt for their order.
	SendOrderConfirmation(ctx context.Context, to string, info OrderInfo) error

	// SendAdminAlert emails the shop owners about a new order.
	SendAdminAlert(ctx context.Context, info OrderInfo) error
}

// formatNOK renders a whole-krone amount with space-separated thousands,
// e.g. 12350 -> "12 350 kr".
func formatNOK(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	neg := false
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}

	var buf bytes.Buffer
	if neg {
		buf.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		buf.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if buf.Len() > 0 && !(neg && buf.Len() == 1) {
			buf.WriteByte(' ')
		}
		buf.WriteString(digits[i : i+3])
	}
	buf.WriteString(" kr")
	return buf.String()
}

var templateFuncs = template.FuncMap{
	"nok": formatNOK,
}

func parseTemplates() (*template.Template, error) {
	return template.New("mail").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}

func render(t *template.Template, name string, info OrderInfo) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, info); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
