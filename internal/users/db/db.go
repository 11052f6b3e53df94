package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/uptrace/bun"
)

// DB is the owner directory boundary. Profile CRUD lives elsewhere; this
// backend only resolves owners and manages the checked-in flag.
type DB struct {
	Bun *bun.DB
}

// GetOwner fetches one owner by id. Returns (nil, nil) when the owner does
// not exist.
func (d *DB) GetOwner(ctx context.Context, id string) (*models.Owner, error) {
	var owner models.Owner
	err := d.Bun.NewSelect().
		Model(&owner).
		Where("owner_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// MarkCheckedIn flips the checked-in flag in a single conditional update.
// Returns false when the owner was already checked in (or does not exist),
// so concurrent admissions of the same owner resolve to exactly one winner.
func (d *DB) MarkCheckedIn(ctx context.Context, id string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Owner)(nil)).
		Set("is_checked_in = ?", true).
		Where("owner_id = ?", id).
		Where("is_checked_in = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// SetCheckedIn unconditionally sets the flag, used by operator tooling.
func (d *DB) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Owner)(nil)).
		Set("is_checked_in = ?", checkedIn).
		Where("owner_id = ?", id).
		Exec(ctx)
	return err
}

// CountCheckedIn returns how many owners currently hold the checked-in flag.
func (d *DB) CountCheckedIn(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Owner)(nil)).
		Where("is_checked_in = ?", true).
		Count(ctx)
}

// CheckOutAll clears the checked-in flag on every owner in one bulk update.
// Safe against concurrent admissions: admissions only ever set the flag, so
// any interleaving leaves each owner in one of the two legal states.
func (d *DB) CheckOutAll(ctx context.Context) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Owner)(nil)).
		Set("is_checked_in = ?", false).
		Where("is_checked_in = ?", true).
		Exec(ctx)
	return err
}

// CreateOwner inserts a directory entry, used by seeding and tests.
func (d *DB) CreateOwner(ctx context.Context, owner models.Owner) error {
	_, err := d.Bun.NewInsert().Model(&owner).Exec(ctx)
	return err
}
