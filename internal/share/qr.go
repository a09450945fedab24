package share

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	maxQRSize     = 1024
)

// QRCode renders content as a size x size PNG. Sizes outside
// (0, 1024] fall back to DefaultQRSize.
func QRCode(content string, size int) ([]byte, error) {
	if size <= 0 || size > maxQRSize {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
