package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CheckInRecord is one admission event. Records are append-only: the only
// mutable field is InHistory, which an owner can clear to hide the record
// from their personal history. Aggregate queries ignore InHistory.
type CheckInRecord struct {
	bun.BaseModel `bun:"table:check_ins"`

	CheckInID string    `bun:"check_in_id,pk" json:"check_in_id"`
	OwnerID   string    `bun:"owner_id,notnull" json:"owner_id"`
	Date      time.Time `bun:"date,notnull" json:"date"`
	InHistory bool      `bun:"in_history,notnull,default:true" json:"in_history"`
}
