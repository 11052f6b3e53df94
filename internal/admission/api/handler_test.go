package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaevanlith/lorre-app/internal/admission"
	"github.com/jaevanlith/lorre-app/internal/admission/api"
	"github.com/jaevanlith/lorre-app/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type mockVerifier struct {
	result admission.Result
	err    error
	gotID  string
}

func (m *mockVerifier) Verify(ctx context.Context, passID string) (admission.Result, error) {
	m.gotID = passID
	return m.result, m.err
}

func setupRouter(verifier *mockVerifier) *chi.Mux {
	handler := &api.Handler{Verifier: verifier, Logger: &logger.Logger{}}
	r := chi.NewRouter()
	r.Get("/tickets/verify/{id}", handler.VerifyPass)
	return r
}

func TestVerifyPassSuccessMessage(t *testing.T) {
	verifier := &mockVerifier{result: admission.Result{Outcome: admission.Success}}
	r := setupRouter(verifier)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/verify/pass-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Inchecken gelukt", w.Body.String())
	assert.Equal(t, "pass-1", verifier.gotID)
}

func TestVerifyPassDenialIsStillOK(t *testing.T) {
	verifier := &mockVerifier{result: admission.Result{Outcome: admission.AlreadyCheckedIn}}
	r := setupRouter(verifier)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/verify/pass-1", nil))

	// A denial is a decided scan, not a server fault.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mislukt - Gebruiker is al ingecheckt", w.Body.String())
}

func TestVerifyPassStorageErrorIs500(t *testing.T) {
	verifier := &mockVerifier{err: errors.New("storage down")}
	r := setupRouter(verifier)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/verify/pass-1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Mislukt")
}
