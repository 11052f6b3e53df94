package db

import (
	"context"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) Insert(ctx context.Context, record models.CheckInRecord) error {
	_, err := d.Bun.NewInsert().Model(&record).Exec(ctx)
	return err
}

// HistoryForOwner returns the owner-visible admission history, newest
// first. Records the owner has cleared are filtered out here and only here.
func (d *DB) HistoryForOwner(ctx context.Context, ownerID string) ([]models.CheckInRecord, error) {
	var records []models.CheckInRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("owner_id = ?", ownerID).
		Where("in_history = ?", true).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ClearHistory hides every record from the owner's personal history without
// deleting anything; the rows stay available to aggregate queries.
// Idempotent: a second call matches zero rows.
func (d *DB) ClearHistory(ctx context.Context, ownerID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.CheckInRecord)(nil)).
		Set("in_history = ?", false).
		Where("owner_id = ?", ownerID).
		Where("in_history = ?", true).
		Exec(ctx)
	return err
}

// DeleteAllForOwner permanently removes an owner's records. Operator-only,
// used when an account is erased.
func (d *DB) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CheckInRecord)(nil)).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	return err
}

// CountBetween is the aggregate path. It deliberately ignores in_history:
// cleared records still count toward venue statistics.
func (d *DB) CountBetween(ctx context.Context, start, end time.Time) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.CheckInRecord)(nil)).
		Where("date >= ?", start).
		Where("date < ?", end).
		Count(ctx)
}
