package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jaevanlith/lorre-app/internal/admission"
	"github.com/jaevanlith/lorre-app/internal/logger"

	"github.com/go-chi/chi/v5"
)

type Verifier interface {
	Verify(ctx context.Context, passID string) (admission.Result, error)
}

type Handler struct {
	Verifier Verifier
	Logger   *logger.Logger
}

// VerifyPass handles a door scan. The response body is the operator-facing
// message, plain text, always 200 for a decided scan; 500 is reserved for
// storage faults.
func (h *Handler) VerifyPass(w http.ResponseWriter, r *http.Request) {
	passID := chi.URLParam(r, "id")
	if passID == "" {
		http.Error(w, "pass id is required", http.StatusBadRequest)
		return
	}

	result, err := h.Verifier.Verify(r.Context(), passID)
	if err != nil {
		h.Logger.Error("ADMISSION", fmt.Sprintf("Verify failed for %s: %v", passID, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Message()))
}
