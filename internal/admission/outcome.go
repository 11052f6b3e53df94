package admission

import (
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/models"
)

type Outcome int

const (
	Success Outcome = iota
	InvalidID
	Expired
	UnknownOwner
	AlreadyCheckedIn
)

// expiredAtLayout renders a timestamp the way door operators see it, e.g.
// "02/01/2006 om 15:04 uur".
const expiredAtLayout = "02/01/2006 om 15:04 uur"

// Result is what a door scan gets back. Denials are normal results, never
// errors: the operator UI shows Message() verbatim.
type Result struct {
	Outcome Outcome
	// Kind and ExpiredAt are set for Expired results; for a one-time pass
	// ExpiredAt is the moment it was used.
	Kind      string
	ExpiredAt time.Time
}

// Message renders the operator-facing text. The strings are part of the
// public contract and must not change.
func (r Result) Message() string {
	switch r.Outcome {
	case Success:
		return "Inchecken gelukt"
	case InvalidID:
		return "Mislukt - Ongeldige QR code"
	case Expired:
		formatted := r.ExpiredAt.Format(expiredAtLayout)
		if r.Kind == models.PassKindSingleUse {
			return fmt.Sprintf("Mislukt - Ticket is al gebruikt op %s", formatted)
		}
		return fmt.Sprintf("Mislukt - Ticket is verlopen op %s", formatted)
	case UnknownOwner:
		return "Mislukt - Gebruiker niet gevonden"
	case AlreadyCheckedIn:
		return "Mislukt - Gebruiker is al ingecheckt"
	default:
		return "Er is iets misgegaan, probeer opnieuw"
	}
}
