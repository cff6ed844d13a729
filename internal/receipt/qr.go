// Package receipt renders order records into DOCX receipt documents with
// an embedded QR code pointing at the storefront.
package receipt

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 200 // pixels

// EncodeQR renders the literal payload URL into a fixed-size PNG. The
// code always points at the storefront, never at an individual order.
func EncodeQR(payloadURL string) ([]byte, error) {
	png, err := qrcode.Encode(payloadURL, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
