package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/google/uuid"
)

type PassDB interface {
	GetPassByID(ctx context.Context, id string) (*models.Pass, error)
	Consume(ctx context.Context, id string, at time.Time) error
}

type OwnerDirectory interface {
	GetOwner(ctx context.Context, id string) (*models.Owner, error)
	MarkCheckedIn(ctx context.Context, id string) (bool, error)
}

type Ledger interface {
	Record(ctx context.Context, ownerID string, date time.Time) (*models.CheckInRecord, error)
}

type PassLock interface {
	LockPass(ctx context.Context, passID, token string) (bool, error)
	UnlockPass(ctx context.Context, passID, token string) error
}

// Service is the single orchestrator of an admission: it alone touches the
// pass registry, the owner's checked-in flag and the check-in ledger for a
// given scan.
type Service struct {
	Passes PassDB
	Owners OwnerDirectory
	Ledger Ledger
	Lock   PassLock
	Logger *logger.Logger
}

func NewService(passes PassDB, owners OwnerDirectory, ledger Ledger, lock PassLock, log *logger.Logger) *Service {
	return &Service{Passes: passes, Owners: owners, Ledger: ledger, Lock: lock, Logger: log}
}

// Verify validates a presented pass and, when everything checks out, admits
// the owner. Denials come back as a Result, not an error; a non-nil error
// means the storage layer failed and the scan should be treated as a server
// fault, not a denial.
//
// Two concurrent scans of the same pass can never both succeed: the winner
// is decided by MarkCheckedIn's conditional update, which flips the flag in
// one storage round trip. The redis lock in front of it only serializes the
// duplicate scans so the loser reads settled state.
func (s *Service) Verify(ctx context.Context, passID string) (Result, error) {
	token := uuid.NewString()
	if s.Lock != nil {
		ok, err := s.Lock.LockPass(ctx, passID, token)
		if err != nil {
			s.Logger.Warn("ADMISSION", fmt.Sprintf("Pass lock unavailable for %s: %v", passID, err))
		} else if ok {
			defer func() {
				if err := s.Lock.UnlockPass(ctx, passID, token); err != nil {
					s.Logger.Warn("ADMISSION", fmt.Sprintf("Failed to release pass lock for %s: %v", passID, err))
				}
			}()
		}
	}

	pass, err := s.Passes.GetPassByID(ctx, passID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up pass %s: %w", passID, err)
	}
	if pass == nil {
		return Result{Outcome: InvalidID}, nil
	}

	now := time.Now()
	if pass.Expired(now) {
		return Result{Outcome: Expired, Kind: pass.Kind, ExpiredAt: pass.ValidUntil}, nil
	}

	owner, err := s.Owners.GetOwner(ctx, pass.OwnerID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve owner %s: %w", pass.OwnerID, err)
	}
	if owner == nil {
		return Result{Outcome: UnknownOwner}, nil
	}
	if owner.IsCheckedIn {
		return Result{Outcome: AlreadyCheckedIn}, nil
	}

	// The atomic claim. Losing here means another scan admitted the owner
	// between our read and now.
	won, err := s.Owners.MarkCheckedIn(ctx, pass.OwnerID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check in owner %s: %w", pass.OwnerID, err)
	}
	if !won {
		return Result{Outcome: AlreadyCheckedIn}, nil
	}

	// One-time passes are invalid after first use; the admission timestamp
	// becomes the "used at" moment shown on any rescan.
	if pass.Kind == models.PassKindSingleUse {
		if err := s.Passes.Consume(ctx, passID, now); err != nil {
			return Result{}, fmt.Errorf("failed to consume pass %s: %w", passID, err)
		}
	}

	if _, err := s.Ledger.Record(ctx, pass.OwnerID, now); err != nil {
		return Result{}, err
	}

	s.Logger.LogVerify(passID, "Inchecken gelukt")
	return Result{Outcome: Success}, nil
}
