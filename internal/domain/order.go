package domain

import "strings"

// Order is the structured result of extracting an order notification.
// All fields are opaque strings taken verbatim from the message; prices
// and totals are never parsed. Items preserves source order.
type Order struct {
	OrderID       string
	FirstName     string
	LastName      string
	Email         string
	Location      string
	Street        string
	City          string
	Phone1        string
	Phone2        string
	PaymentMethod string
	ShippingFees  string
	PromoCode     string
	TotalPrice    string
	UserID        string
	Items         []string
}

// Valid reports whether the record satisfies the mandatory-field
// invariant: OrderID and FirstName both non-empty after trimming.
func (o *Order) Valid() bool {
	return strings.TrimSpace(o.OrderID) != "" && strings.TrimSpace(o.FirstName) != ""
}
