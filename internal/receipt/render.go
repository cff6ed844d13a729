package receipt

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"orderbot/internal/domain"

	"github.com/fumiama/go-docx"
)

const (
	fontBody  = "Arial"
	fontTitle = "Arial Black"
)

// Renderer assembles the fixed-layout receipt document. Pure given a
// valid record: the same record and payload URL always produce the same
// bytes (no timestamps or random ids end up in the document).
type Renderer struct {
	payloadURL string
	logger     *slog.Logger
}

func NewRenderer(payloadURL string, logger *slog.Logger) *Renderer {
	return &Renderer{payloadURL: payloadURL, logger: logger}
}

// orNA substitutes the placeholder for absent optional fields so the
// layout stays visually stable.
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Render serializes the receipt for rec. Missing optional fields never
// fail a render; only document serialization can.
func (r *Renderer) Render(rec *domain.Order) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph().Justification("center")
	title.AddText("ORDER RECEIPT").Size("36").Color("000000").Bold().Font(fontTitle, "", fontTitle, "default")
	w.AddParagraph()

	orderLine := w.AddParagraph().Justification("center")
	orderLine.AddText("Order ID: " + rec.OrderID).Size("24").Bold().Font(fontBody, "", fontBody, "default")
	w.AddParagraph()

	w.AddParagraph().AddText("CUSTOMER DETAILS").Size("22").Bold().Font(fontBody, "", fontBody, "default")

	name := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
	r.bodyLine(w, "👤 "+name, "20")
	r.bodyLine(w, "📧 "+orNA(rec.Email), "20")
	r.bodyLine(w, "📞 "+phoneLine(rec), "20")
	r.bodyLine(w, "📍 "+orNA(rec.Street)+", "+orNA(rec.City), "20")
	r.bodyLine(w, "🌍 "+orNA(rec.Location), "20")
	w.AddParagraph()

	w.AddParagraph().AddText("ORDER SUMMARY").Size("22").Bold().Font(fontBody, "", fontBody, "default")

	items := rec.Items
	if len(items) == 0 {
		items = []string{"N/A"}
	}
	for _, item := range items {
		r.bodyLine(w, bullet(item), "22")
	}
	w.AddParagraph()

	r.bodyLine(w, "💳 Payment: "+orNA(rec.PaymentMethod), "20")
	r.bodyLine(w, "🚚 Shipping: "+orNA(rec.ShippingFees), "20")
	total := w.AddParagraph()
	total.AddText("💰 Total: " + orNA(rec.TotalPrice)).Size("22").Bold().Font(fontBody, "", fontBody, "default")
	w.AddParagraph()

	r.addQR(w, rec.OrderID)

	url := w.AddParagraph().Justification("center")
	url.AddText(r.payloadURL).Size("21").Font(fontBody, "", fontBody, "default")

	thanks := w.AddParagraph().Justification("center")
	thanks.AddText("Thank you for your order!").Size("24").Bold().Font(fontBody, "", fontBody, "default")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) bodyLine(w *docx.Docx, text, size string) {
	w.AddParagraph().AddText(text).Size(size).Font(fontBody, "", fontBody, "default")
}

// addQR embeds the storefront QR code, centered. A failed encode degrades
// the document (no image block) instead of failing the whole render.
func (r *Renderer) addQR(w *docx.Docx, orderID string) {
	png, err := EncodeQR(r.payloadURL)
	if err != nil {
		r.logger.Warn("qr code generation failed, rendering receipt without it", "order_id", orderID, "err", err)
		return
	}
	para := w.AddParagraph().Justification("center")
	if _, err := para.AddInlineDrawing(png); err != nil {
		r.logger.Warn("cannot embed qr code", "order_id", orderID, "err", err)
	}
}

// phoneLine renders phone1 (or the placeholder) with a "/ phone2" suffix
// only when phone2 is present and not itself the placeholder.
func phoneLine(rec *domain.Order) string {
	p := orNA(rec.Phone1)
	if rec.Phone2 != "" && rec.Phone2 != "N/A" {
		p += " / " + rec.Phone2
	}
	return p
}

// bullet ensures every cart line renders bulleted, preserving a bullet
// already present in the source.
func bullet(item string) string {
	if strings.HasPrefix(item, "•") {
		return item
	}
	return "• " + strings.TrimSpace(item)
}
