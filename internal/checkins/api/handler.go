package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	checkins "github.com/jaevanlith/lorre-app/internal/checkins/service"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/go-chi/chi/v5"
)

type Ledger interface {
	History(ctx context.Context, ownerID string) ([]models.CheckInRecord, error)
	ClearHistory(ctx context.Context, ownerID string) error
	DeleteAll(ctx context.Context, ownerID string) error
	CountBetween(ctx context.Context, start, end time.Time) (int, error)
}

type Handler struct {
	Ledger Ledger
	Logger *logger.Logger
}

// GetHistory returns the owner's visible check-in history, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	records, err := h.Ledger.History(r.Context(), ownerID)
	if err != nil {
		h.respondLedgerError(w, ownerID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// ClearHistory hides the owner's check-ins from their history view. The
// records stay in storage so attendance aggregates keep counting them.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	if err := h.Ledger.ClearHistory(r.Context(), ownerID); err != nil {
		h.respondLedgerError(w, ownerID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll erases the owner's check-in records outright, for account
// deletion.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	if err := h.Ledger.DeleteAll(r.Context(), ownerID); err != nil {
		h.respondLedgerError(w, ownerID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CountBetween reports attendance in a date range, cleared history included.
// Dates are RFC 3339 in the "start" and "end" query parameters.
func (h *Handler) CountBetween(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start date", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end date", http.StatusBadRequest)
		return
	}

	count, err := h.Ledger.CountBetween(r.Context(), start, end)
	if err != nil {
		h.Logger.Error("CHECKINS", fmt.Sprintf("Failed to count check-ins: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

func (h *Handler) respondLedgerError(w http.ResponseWriter, ownerID string, err error) {
	if errors.Is(err, checkins.ErrOwnerNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	h.Logger.Error("CHECKINS", fmt.Sprintf("Ledger operation failed for %s: %v", ownerID, err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
