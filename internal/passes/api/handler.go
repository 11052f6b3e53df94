package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"
	passes "github.com/jaevanlith/lorre-app/internal/passes/service"

	"github.com/go-chi/chi/v5"
)

type PassService interface {
	IssuePass(ctx context.Context, ownerID, kind, img string, startDate time.Time) (*models.Pass, error)
	GetPass(ctx context.Context, id string) (*models.Pass, error)
	PassesForOwner(ctx context.Context, ownerID string) ([]models.Pass, error)
	RemovePass(ctx context.Context, id string) error
}

type Handler struct {
	Service PassService
	Logger  *logger.Logger
}

type issueRequest struct {
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Img       string    `json:"img"`
	StartDate time.Time `json:"start_date"`
}

// IssuePass creates a pass directly, bypassing payment. Admin tooling for
// comped and replacement passes; paid purchases go through the payment flow.
func (h *Handler) IssuePass(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	pass, err := h.Service.IssuePass(r.Context(), req.OwnerID, req.Kind, req.Img, req.StartDate)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(pass)
}

func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	pass, err := h.Service.GetPass(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pass)
}

// GetOwnerPasses lists an owner's passes, newest validity first.
func (h *Handler) GetOwnerPasses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.PassesForOwner(r.Context(), chi.URLParam(r, "ownerId"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) DeletePass(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemovePass(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, passes.ErrPassNotFound):
		http.Error(w, "pass not found", http.StatusNotFound)
	case errors.Is(err, passes.ErrOwnerNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, passes.ErrInvalidKind):
		http.Error(w, "invalid pass kind", http.StatusBadRequest)
	default:
		h.Logger.Error("PASSES", fmt.Sprintf("Pass operation failed: %v", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
