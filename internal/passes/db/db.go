package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetPassByID fetches one pass. Returns (nil, nil) when the id is unknown.
func (d *DB) GetPassByID(ctx context.Context, id string) (*models.Pass, error) {
	var pass models.Pass
	err := d.Bun.NewSelect().
		Model(&pass).
		Where("pass_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pass, nil
}

func (d *DB) CreatePass(ctx context.Context, pass models.Pass) error {
	_, err := d.Bun.NewInsert().Model(&pass).Exec(ctx)
	return err
}

// Consume closes the validity window of a one-time pass by setting
// valid_until to the admission timestamp. The timestamp doubles as the
// "used at" moment reported on any later scan of the same pass.
func (d *DB) Consume(ctx context.Context, id string, at time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Pass)(nil)).
		Set("valid_until = ?", at).
		Where("pass_id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) PassesForOwner(ctx context.Context, ownerID string) ([]models.Pass, error) {
	var passes []models.Pass
	err := d.Bun.NewSelect().
		Model(&passes).
		Where("owner_id = ?", ownerID).
		Order("valid_until DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return passes, nil
}

// DeletePass removes a pass, operator tooling only.
func (d *DB) DeletePass(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Pass)(nil)).
		Where("pass_id = ?", id).
		Exec(ctx)
	return err
}

// ExpiringBetween lists passes whose validity ends inside [start, end],
// used by the daily reminder sweep.
func (d *DB) ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Pass, error) {
	var passes []models.Pass
	err := d.Bun.NewSelect().
		Model(&passes).
		Where("valid_until >= ?", start).
		Where("valid_until <= ?", end).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return passes, nil
}
