package checkins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/google/uuid"
)

type DBLayer interface {
	Insert(ctx context.Context, record models.CheckInRecord) error
	HistoryForOwner(ctx context.Context, ownerID string) ([]models.CheckInRecord, error)
	ClearHistory(ctx context.Context, ownerID string) error
	DeleteAllForOwner(ctx context.Context, ownerID string) error
	CountBetween(ctx context.Context, start, end time.Time) (int, error)
}

type OwnerDirectory interface {
	GetOwner(ctx context.Context, id string) (*models.Owner, error)
}

var ErrOwnerNotFound = errors.New("owner does not exist")

// LedgerService owns the append-only admission history.
type LedgerService struct {
	DB     DBLayer
	Owners OwnerDirectory
}

func NewLedgerService(db DBLayer, owners OwnerDirectory) *LedgerService {
	return &LedgerService{DB: db, Owners: owners}
}

// Record appends one admission event, visible in the owner's history.
func (s *LedgerService) Record(ctx context.Context, ownerID string, date time.Time) (*models.CheckInRecord, error) {
	if date.IsZero() {
		date = time.Now()
	}
	record := models.CheckInRecord{
		CheckInID: uuid.NewString(),
		OwnerID:   ownerID,
		Date:      date,
		InHistory: true,
	}
	if err := s.DB.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store check-in: %w", err)
	}
	return &record, nil
}

func (s *LedgerService) History(ctx context.Context, ownerID string) ([]models.CheckInRecord, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.DB.HistoryForOwner(ctx, ownerID)
}

func (s *LedgerService) ClearHistory(ctx context.Context, ownerID string) error {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}
	return s.DB.ClearHistory(ctx, ownerID)
}

// DeleteAll hard-deletes an owner's records. This is the account-erasure
// path, not the history-clear path.
func (s *LedgerService) DeleteAll(ctx context.Context, ownerID string) error {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}
	return s.DB.DeleteAllForOwner(ctx, ownerID)
}

// CountBetween reports admissions in [start, end) regardless of whether
// owners have cleared them from their personal history.
func (s *LedgerService) CountBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.DB.CountBetween(ctx, start, end)
}

func (s *LedgerService) requireOwner(ctx context.Context, ownerID string) error {
	owner, err := s.Owners.GetOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return ErrOwnerNotFound
	}
	return nil
}
