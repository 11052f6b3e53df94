package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jaevanlith/lorre-app/internal/logger"
)

type Counter interface {
	Current(ctx context.Context) (int, error)
	Increment(ctx context.Context) (int, error)
	Decrement(ctx context.Context) (int, error)
	ResetOnVenueClose(ctx context.Context) error
}

type StatusGate interface {
	Current() string
	Toggle(ctx context.Context) (string, error)
}

type Handler struct {
	Counter Counter
	Status  StatusGate
	Logger  *logger.Logger
}

func (h *Handler) writeCount(w http.ResponseWriter, count int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strconv.Itoa(count)))
}

// GetTotal returns the live visitor count. Only meaningful while the venue
// is open, but always answers.
func (h *Handler) GetTotal(w http.ResponseWriter, r *http.Request) {
	count, err := h.Counter.Current(r.Context())
	if err != nil {
		h.Logger.Error("OCCUPANCY", fmt.Sprintf("Failed to read count: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeCount(w, count)
}

// Plus applies a manual +1 and returns the resulting count. At capacity the
// adjustment is a no-op and the unchanged count comes back.
func (h *Handler) Plus(w http.ResponseWriter, r *http.Request) {
	count, err := h.Counter.Increment(r.Context())
	if err != nil {
		h.Logger.Error("OCCUPANCY", fmt.Sprintf("Failed to increment count: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeCount(w, count)
}

func (h *Handler) Minus(w http.ResponseWriter, r *http.Request) {
	count, err := h.Counter.Decrement(r.Context())
	if err != nil {
		h.Logger.Error("OCCUPANCY", fmt.Sprintf("Failed to decrement count: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeCount(w, count)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.Status.Current()))
}

// ToggleStatus flips the venue between open and closed. Closing checks
// everyone out.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Status.Toggle(r.Context())
	if err != nil {
		h.Logger.Error("VENUE", fmt.Sprintf("Toggle failed: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.Logger.Info("VENUE", fmt.Sprintf("Venue is now %s", status))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(status))
}

// CheckoutAll clears every checked-in flag without touching the gate, for
// end-of-night cleanup when the venue was never formally closed.
func (h *Handler) CheckoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Counter.ResetOnVenueClose(r.Context()); err != nil {
		h.Logger.Error("VENUE", fmt.Sprintf("Checkout-all failed: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
