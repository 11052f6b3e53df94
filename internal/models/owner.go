package models

import "github.com/uptrace/bun"

// Owner is a pass holder in the user directory. Profile management is owned
// by a separate service; this backend only reads identity and flips the
// checked-in flag.
type Owner struct {
	bun.BaseModel `bun:"table:owners"`

	OwnerID     string `bun:"owner_id,pk" json:"owner_id"`
	Email       string `bun:"email,unique,notnull" json:"email"`
	FirstName   string `bun:"first_name" json:"first_name"`
	LastName    string `bun:"last_name" json:"last_name"`
	IsCheckedIn bool   `bun:"is_checked_in,notnull,default:false" json:"is_checked_in"`
}
