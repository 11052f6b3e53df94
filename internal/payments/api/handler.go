package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"
	"github.com/jaevanlith/lorre-app/internal/payments/gateway"
	payments "github.com/jaevanlith/lorre-app/internal/payments/service"
)

type PaymentService interface {
	PaymentMethods(ctx context.Context, kind string) (*payments.MethodsResult, error)
	SubmitPayment(ctx context.Context, req payments.SubmitRequest) (*models.PaymentResponse, error)
	HandleRedirect(ctx context.Context, orderRef string, details map[string]string) (string, error)
}

type Handler struct {
	Service  PaymentService
	Frontend config.FrontendConfig
	Logger   *logger.Logger
}

// PaymentMethods returns the gateway's method list plus the client key, for
// the drop-in on the purchase page.
func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Service.PaymentMethods(r.Context(), req.Kind)
	if err != nil {
		h.respondServiceError(w, "methods", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// SubmitPayment starts a payment for a pass purchase.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req payments.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if req.OwnerID == "" || len(req.PaymentMethod) == 0 {
		http.Error(w, "owner_id and paymentMethod are required", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.SubmitPayment(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "submit", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Callback is where the gateway sends the shopper after a redirect payment.
// Whatever happens, the shopper's browser ends up on a result page; the
// verdict only picks which one.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	orderRef := r.URL.Query().Get("orderRef")

	details := map[string]string{}
	if v := r.URL.Query().Get("redirectResult"); v != "" {
		details["redirectResult"] = v
	}
	if v := r.URL.Query().Get("payload"); v != "" {
		details["payload"] = v
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			for _, k := range []string{"redirectResult", "payload", "MD", "PaRes"} {
				if v := r.PostForm.Get(k); v != "" {
					details[k] = v
				}
			}
		}
	}

	resultCode, err := h.Service.HandleRedirect(r.Context(), orderRef, details)
	if err != nil {
		h.Logger.Error("PAYMENT", fmt.Sprintf("Callback for order %s failed: %v", orderRef, err))
		h.redirectToResult(w, r, "Error")
		return
	}

	h.redirectToResult(w, r, resultPage(resultCode))
}

func resultPage(resultCode string) string {
	switch resultCode {
	case models.ResultAuthorised:
		return "Success"
	case models.ResultPending, models.ResultReceived:
		return "Pending"
	case models.ResultCancelled:
		return "Cancelled"
	case models.ResultRefused:
		return "Failed"
	default:
		return "Error"
	}
}

func (h *Handler) redirectToResult(w http.ResponseWriter, r *http.Request, page string) {
	http.Redirect(w, r, h.Frontend.BaseURL+"/PaymentResult/"+page, http.StatusFound)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, payments.ErrUnknownKind) {
		http.Error(w, "unknown pass kind", http.StatusBadRequest)
		return
	}
	if errors.Is(err, gateway.ErrUpstream) {
		h.Logger.Error("PAYMENT", fmt.Sprintf("Gateway unavailable during %s: %v", op, err))
		http.Error(w, "payment provider unavailable", http.StatusBadGateway)
		return
	}
	h.Logger.Error("PAYMENT", fmt.Sprintf("Payment %s failed: %v", op, err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
