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

// CreateIntent stores a pending payment intent awaiting the shopper's
// redirect callback.
func (d *DB) CreateIntent(ctx context.Context, intent models.PendingPaymentIntent) error {
	_, err := d.Bun.NewInsert().Model(&intent).Exec(ctx)
	return err
}

// GetIntentByOrderRef returns the pending intent or (nil, nil) when none
// exists, which a callback reads as "already reconciled".
func (d *DB) GetIntentByOrderRef(ctx context.Context, orderRef string) (*models.PendingPaymentIntent, error) {
	intent := new(models.PendingPaymentIntent)
	err := d.Bun.NewSelect().Model(intent).Where("order_ref = ?", orderRef).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func (d *DB) DeleteIntent(ctx context.Context, orderRef string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.PendingPaymentIntent)(nil)).
		Where("order_ref = ?", orderRef).
		Exec(ctx)
	return err
}

// DeleteOlderThan removes intents created before the cutoff and reports how
// many went.
func (d *DB) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.PendingPaymentIntent)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
