package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Pass kinds. The wire values ("year", "one-time") are part of the public
// contract and are shared with the payment gateway price table.
const (
	PassKindAnnual    = "year"
	PassKindSingleUse = "one-time"
)

type Pass struct {
	bun.BaseModel `bun:"table:passes"`

	PassID     string    `bun:"pass_id,pk" json:"pass_id"`
	OwnerID    string    `bun:"owner_id,notnull" json:"owner_id"`
	Kind       string    `bun:"kind,notnull" json:"kind"`
	ValidFrom  time.Time `bun:"valid_from,notnull" json:"valid_from"`
	ValidUntil time.Time `bun:"valid_until,notnull" json:"valid_until"`
	Img        string    `bun:"img" json:"img"`
	QRCode     []byte    `bun:"qr_code" json:"qr_code,omitempty"`
}

// Expired reports whether the pass validity window has closed. A one-time
// pass that has been used is also "expired" here, since its valid_until is
// set to the moment of admission.
func (p *Pass) Expired(now time.Time) bool {
	return p.ValidUntil.Before(now)
}
