// Package order classifies inbound messages as store order notifications
// and extracts structured order records from their text.
package order

import (
	"fmt"
	"os"

	"orderbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// Marker strings as emitted by the storefront's order webhook. Each pairs
// a glyph with a label so casual chatter does not collide with them.
const (
	markerBanner        = "🛒 New Order Received"
	markerFirstName     = "👤 First Name"
	markerLastName      = "👤 Last Name"
	markerEmail         = "📧 Email"
	markerLocation      = "📍 Location"
	markerStreet        = "🏠 Street Name"
	markerCity          = "🏙️ City"
	markerPhone1        = "📞 Phone Number 1"
	markerPhone2        = "📞 Phone Number 2"
	markerCartItems     = "🛍️ Cart Items"
	markerPaymentMethod = "💳 Payment Method"
	markerShippingFees  = "💰 Shipping Fees"
	markerPromoCode     = "🎟️ Promo Code Used"
	markerTotalPrice    = "💰 Total Price"
	markerOrderID       = "🆔 Order ID"
	markerUserID        = "👤 User ID"
)

// defaultClassifierMarkers are the 8 markers the classifier counts. A real
// order may omit optional fields, but several of these always co-occur.
var defaultClassifierMarkers = []string{
	markerBanner,
	markerFirstName,
	markerEmail,
	markerLocation,
	markerCartItems,
	markerPaymentMethod,
	markerTotalPrice,
	markerOrderID,
}

// defaultThreshold is the tuned balance between false positives from chat
// (too low) and losing real orders that omit fields (too high).
const defaultThreshold = 3

// fieldMarker binds a marker label to the record field its line fills.
type fieldMarker struct {
	label string
	set   func(*domain.Order, string)
}

// fieldMarkers drives per-line extraction. Cart items are absent here:
// they span multiple lines and are cut from the blob separately.
var fieldMarkers = []fieldMarker{
	{markerFirstName, func(o *domain.Order, v string) { o.FirstName = v }},
	{markerLastName, func(o *domain.Order, v string) { o.LastName = v }},
	{markerEmail, func(o *domain.Order, v string) { o.Email = v }},
	{markerLocation, func(o *domain.Order, v string) { o.Location = v }},
	{markerStreet, func(o *domain.Order, v string) { o.Street = v }},
	{markerCity, func(o *domain.Order, v string) { o.City = v }},
	{markerPhone1, func(o *domain.Order, v string) { o.Phone1 = v }},
	{markerPhone2, func(o *domain.Order, v string) { o.Phone2 = v }},
	{markerPaymentMethod, func(o *domain.Order, v string) { o.PaymentMethod = v }},
	{markerShippingFees, func(o *domain.Order, v string) { o.ShippingFees = v }},
	{markerPromoCode, func(o *domain.Order, v string) { o.PromoCode = v }},
	{markerTotalPrice, func(o *domain.Order, v string) { o.TotalPrice = v }},
	{markerOrderID, func(o *domain.Order, v string) { o.OrderID = v }},
	{markerUserID, func(o *domain.Order, v string) { o.UserID = v }},
}

// markersFile is the YAML schema of an optional classifier override file.
type markersFile struct {
	Markers   []string `yaml:"markers"`
	Threshold int      `yaml:"threshold"`
}

// LoadMarkers reads a classifier override from a YAML file. Markers
// replace the default set when present; threshold replaces the default
// when positive. Extraction labels are not affected.
func LoadMarkers(path string) ([]string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read markers file: %w", err)
	}

	var mf markersFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, 0, fmt.Errorf("parse markers file %s: %w", path, err)
	}

	markers := mf.Markers
	if len(markers) == 0 {
		markers = defaultClassifierMarkers
	}
	threshold := mf.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return markers, threshold, nil
}
