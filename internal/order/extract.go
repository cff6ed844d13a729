package order

import (
	"regexp"
	"strings"

	"orderbot/internal/domain"
)

var spaceRun = regexp.MustCompile(`\s+`)

// cleanValue collapses internal whitespace runs to single spaces and trims.
func cleanValue(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Extract parses an order notification body into a structured record.
// Each line fills at most one field: the first marker label contained in
// the line claims it, and the value is the cleaned text after the line's
// first colon. The cart-items block is cut from the full blob instead,
// since it spans multiple lines. Returns nil unless the mandatory fields
// (order id, first name) survived with non-empty values.
func Extract(content string) *domain.Order {
	if content == "" {
		return nil
	}

	rec := &domain.Order{}
	for _, line := range strings.Split(content, "\n") {
		for _, fm := range fieldMarkers {
			if !strings.Contains(line, fm.label) {
				continue
			}
			if _, rest, ok := strings.Cut(line, ":"); ok {
				fm.set(rec, cleanValue(rest))
			}
			break
		}
	}

	rec.Items = extractItems(content)

	if !rec.Valid() {
		return nil
	}
	return rec
}

// extractItems returns the cart lines between the items marker and the
// payment-method marker, with the label and emphasis markup stripped and
// blank lines dropped. Lines are kept verbatim, bullets included.
func extractItems(content string) []string {
	start := strings.Index(content, markerCartItems)
	end := strings.Index(content, markerPaymentMethod)
	if start < 0 || end < 0 || end <= start {
		return nil
	}

	block := content[start:end]
	block = strings.Replace(block, markerCartItems+":", "", 1)
	block = strings.ReplaceAll(block, "*", "")
	block = strings.TrimSpace(block)

	var items []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}
