package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire
const DateLayout = "2006-01-02"

// FormatAmount renders a monetary amount with exactly two decimal places
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseAmount parses a decimal amount and rounds it to cents
func ParseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return amount.Round(2), nil
}

// FormatDate renders the calendar day of a stored date. Dates are stored as
// UTC midnight, so drivers returning local times are converted back first.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// OrderURL returns the API path of an order
func OrderURL(orderID uint) string {
	return fmt.Sprintf("/api/v1/orders/%d", orderID)
}

// ExportFilename returns the attachment name of a delivery's order forms
func ExportFilename(deliveryDate time.Time) string {
	return fmt.Sprintf("%s_order_forms.xlsx", FormatDate(deliveryDate))
}
