package passes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"
	"github.com/jaevanlith/lorre-app/internal/passes/qr"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreatePass(ctx context.Context, pass models.Pass) error
	GetPassByID(ctx context.Context, id string) (*models.Pass, error)
	Consume(ctx context.Context, id string, at time.Time) error
	PassesForOwner(ctx context.Context, ownerID string) ([]models.Pass, error)
	DeletePass(ctx context.Context, id string) error
	ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Pass, error)
}

type OwnerDirectory interface {
	GetOwner(ctx context.Context, id string) (*models.Owner, error)
}

var (
	ErrOwnerNotFound = errors.New("owner does not exist")
	ErrPassNotFound  = errors.New("pass not found")
	ErrInvalidKind   = errors.New("invalid pass kind")
)

type PassService struct {
	DB     DBLayer
	Owners OwnerDirectory
}

func NewPassService(db DBLayer, owners OwnerDirectory) *PassService {
	return &PassService{DB: db, Owners: owners}
}

// IssuePass creates a pass for an existing owner. A zero startDate means
// "now". Both kinds get a one-year validity window; a one-time pass simply
// stays valid until its first use closes the window.
func (s *PassService) IssuePass(ctx context.Context, ownerID, kind, img string, startDate time.Time) (*models.Pass, error) {
	if kind != models.PassKindAnnual && kind != models.PassKindSingleUse {
		return nil, ErrInvalidKind
	}

	owner, err := s.Owners.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	if startDate.IsZero() {
		startDate = time.Now()
	}
	endDate := startDate.AddDate(1, 0, 0)

	passID := uuid.NewString()
	qrBytes, err := qr.Generate(passID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}

	pass := models.Pass{
		PassID:     passID,
		OwnerID:    ownerID,
		Kind:       kind,
		ValidFrom:  startDate,
		ValidUntil: endDate,
		Img:        img,
		QRCode:     qrBytes,
	}

	if err := s.DB.CreatePass(ctx, pass); err != nil {
		return nil, fmt.Errorf("failed to create pass: %w", err)
	}
	return &pass, nil
}

func (s *PassService) GetPass(ctx context.Context, id string) (*models.Pass, error) {
	pass, err := s.DB.GetPassByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, ErrPassNotFound
	}
	return pass, nil
}

func (s *PassService) PassesForOwner(ctx context.Context, ownerID string) ([]models.Pass, error) {
	owner, err := s.Owners.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}
	return s.DB.PassesForOwner(ctx, ownerID)
}

// RemovePass deletes a pass outright, operator tooling only.
func (s *PassService) RemovePass(ctx context.Context, id string) error {
	pass, err := s.DB.GetPassByID(ctx, id)
	if err != nil {
		return err
	}
	if pass == nil {
		return ErrPassNotFound
	}
	return s.DB.DeletePass(ctx, id)
}

// ExpiringInTwoWeeks lists passes whose validity ends two weeks from now,
// to the day. The sweeper feeds these to the expiry reminder notifier.
func (s *PassService) ExpiringInTwoWeeks(ctx context.Context, now time.Time) ([]models.Pass, error) {
	target := now.AddDate(0, 0, 14)
	startOfDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.DB.ExpiringBetween(ctx, startOfDay, endOfDay)
}
