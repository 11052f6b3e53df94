package qr

import (
	"github.com/skip2/go-qrcode"
)

// Generate renders the pass id as a QR image. The id is what door scanners
// present back to /tickets/verify/{id}, so the payload is the bare id with
// no framing.
func Generate(passID string) ([]byte, error) {
	return qrcode.Encode(passID, qrcode.Medium, 256)
}
