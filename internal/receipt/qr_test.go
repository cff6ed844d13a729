package receipt

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestEncodeQR_ProducesFixedSizePNG(t *testing.T) {
	data, err := EncodeQR("https://shop.example.com")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != qrSize || bounds.Dy() != qrSize {
		t.Fatalf("expected %dx%d, got %dx%d", qrSize, qrSize, bounds.Dx(), bounds.Dy())
	}
}

func TestEncodeQR_Deterministic(t *testing.T) {
	first, err := EncodeQR("https://shop.example.com")
	if err != nil {
		t.Fatalf("first encode: %v", err)
	}
	second, err := EncodeQR("https://shop.example.com")
	if err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical payloads must encode identically")
	}
}

func TestEncodeQR_PayloadTooLarge(t *testing.T) {
	if _, err := EncodeQR(strings.Repeat("x", 8000)); err == nil {
		t.Fatal("expected an error for an oversized payload")
	}
}
