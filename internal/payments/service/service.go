package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/google/uuid"
)

var ErrUnknownKind = errors.New("unknown pass kind")

// PriceFor returns the charge for a pass kind, in euro cents. Prices are
// fixed server-side; the front-end never supplies an amount.
func PriceFor(kind string) (models.Amount, error) {
	switch kind {
	case models.PassKindAnnual:
		return models.Amount{Currency: "EUR", Value: 850}, nil
	case models.PassKindSingleUse:
		return models.Amount{Currency: "EUR", Value: 200}, nil
	default:
		return models.Amount{}, ErrUnknownKind
	}
}

type Gateway interface {
	MerchantAccount() string
	AvailableMethods(ctx context.Context, req models.PaymentMethodsRequest) (*models.PaymentMethodsResponse, error)
	SubmitPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error)
	SubmitDetails(ctx context.Context, req models.PaymentDetailsRequest) (*models.PaymentResponse, error)
}

type IntentDB interface {
	CreateIntent(ctx context.Context, intent models.PendingPaymentIntent) error
	GetIntentByOrderRef(ctx context.Context, orderRef string) (*models.PendingPaymentIntent, error)
	DeleteIntent(ctx context.Context, orderRef string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type PassIssuer interface {
	IssuePass(ctx context.Context, ownerID, kind, img string, startDate time.Time) (*models.Pass, error)
}

type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, ownerID, kind string) error
}

// PaymentService drives the purchase flow: quoting payment methods,
// submitting payments, and reconciling the gateway's verdict into an issued
// pass.
type PaymentService struct {
	Gateway  Gateway
	DB       IntentDB
	Passes   PassIssuer
	Notifier Notifier
	Frontend config.FrontendConfig
	Logger   *logger.Logger

	clientKey string
}

func NewPaymentService(gw Gateway, db IntentDB, passes PassIssuer, notifier Notifier, cfg *config.Config, log *logger.Logger) *PaymentService {
	return &PaymentService{
		Gateway:   gw,
		DB:        db,
		Passes:    passes,
		Notifier:  notifier,
		Frontend:  cfg.Frontend,
		Logger:    log,
		clientKey: cfg.Gateway.ClientKey,
	}
}

// MethodsResult bundles the gateway's method list with the client key the
// drop-in needs to initialise.
type MethodsResult struct {
	ClientKey string                         `json:"clientKey"`
	Response  *models.PaymentMethodsResponse `json:"response"`
}

// PaymentMethods quotes the available payment methods for a pass kind.
func (s *PaymentService) PaymentMethods(ctx context.Context, kind string) (*MethodsResult, error) {
	amount, err := PriceFor(kind)
	if err != nil {
		return nil, err
	}

	resp, err := s.Gateway.AvailableMethods(ctx, models.PaymentMethodsRequest{
		MerchantAccount: s.Gateway.MerchantAccount(),
		CountryCode:     "NL",
		ShopperLocale:   "nl-NL",
		Amount:          &amount,
		Channel:         "Web",
	})
	if err != nil {
		return nil, err
	}
	return &MethodsResult{ClientKey: s.clientKey, Response: resp}, nil
}

// SubmitRequest is what the front-end sends to start a payment. The
// paymentMethod blob from the drop-in is passed to the gateway untouched.
type SubmitRequest struct {
	OwnerID       string          `json:"owner_id"`
	Kind          string          `json:"kind"`
	Img           string          `json:"img"`
	PaymentMethod json.RawMessage `json:"paymentMethod"`
}

// SubmitPayment charges the server-side price for the pass kind. If the
// gateway settles immediately the pass is issued on the spot; if it demands
// a redirect, a pending intent is stored for the callback to resolve.
func (s *PaymentService) SubmitPayment(ctx context.Context, req SubmitRequest) (*models.PaymentResponse, error) {
	amount, err := PriceFor(req.Kind)
	if err != nil {
		return nil, err
	}

	orderRef := uuid.NewString()
	returnURL := s.Frontend.ReturnURL + "?orderRef=" + url.QueryEscape(orderRef)

	resp, err := s.Gateway.SubmitPayment(ctx, models.PaymentRequest{
		MerchantAccount: s.Gateway.MerchantAccount(),
		PaymentMethod:   req.PaymentMethod,
		Amount:          amount,
		Reference:       orderRef,
		ReturnURL:       returnURL,
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogPayment("SUBMIT", orderRef, fmt.Sprintf("Gateway returned %s", resp.ResultCode))

	if resp.Action != nil {
		intent := models.PendingPaymentIntent{
			OrderRef:    orderRef,
			OwnerID:     req.OwnerID,
			PassKind:    req.Kind,
			Img:         req.Img,
			PaymentData: resp.Action.PaymentData,
			CreatedAt:   time.Now(),
		}
		if err := s.DB.CreateIntent(ctx, intent); err != nil {
			return nil, fmt.Errorf("failed to store payment intent %s: %w", orderRef, err)
		}
		return resp, nil
	}

	if resp.ResultCode == models.ResultAuthorised {
		if err := s.issueAndNotify(ctx, orderRef, req.OwnerID, req.Kind, req.Img); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// HandleRedirect reconciles a shopper returning from the gateway. It is
// idempotent: the gateway may call back more than once for the same order,
// and browsers re-fire redirects, so an authorised order whose intent is
// already gone is treated as settled, not as an error.
func (s *PaymentService) HandleRedirect(ctx context.Context, orderRef string, details map[string]string) (string, error) {
	intent, err := s.DB.GetIntentByOrderRef(ctx, orderRef)
	if err != nil {
		return "", fmt.Errorf("failed to load payment intent %s: %w", orderRef, err)
	}

	detailsReq := models.PaymentDetailsRequest{Details: details}
	if intent != nil {
		detailsReq.PaymentData = intent.PaymentData
	}

	resp, err := s.Gateway.SubmitDetails(ctx, detailsReq)
	if err != nil {
		return "", err
	}

	s.Logger.LogPayment("CALLBACK", orderRef, fmt.Sprintf("Gateway returned %s", resp.ResultCode))

	switch resp.ResultCode {
	case models.ResultAuthorised:
		if intent == nil {
			// Duplicate callback for an order we already settled.
			return resp.ResultCode, nil
		}
		if err := s.issueAndNotify(ctx, orderRef, intent.OwnerID, intent.PassKind, intent.Img); err != nil {
			return "", err
		}
		if err := s.DB.DeleteIntent(ctx, orderRef); err != nil {
			return "", fmt.Errorf("failed to clear payment intent %s: %w", orderRef, err)
		}
	case models.ResultCancelled, models.ResultRefused:
		if intent != nil {
			if err := s.DB.DeleteIntent(ctx, orderRef); err != nil {
				return "", fmt.Errorf("failed to clear payment intent %s: %w", orderRef, err)
			}
		}
	default:
		// Pending/Received: keep the intent, a later callback settles it.
	}
	return resp.ResultCode, nil
}

// PurgeStaleIntents deletes intents older than maxAge. Orders abandoned at
// the bank never call back, so the sweeper reclaims them.
func (s *PaymentService) PurgeStaleIntents(ctx context.Context, maxAge time.Duration) (int, error) {
	purged, err := s.DB.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.Logger.Info("PAYMENT", fmt.Sprintf("Purged %d stale payment intents", purged))
	}
	return purged, nil
}

func (s *PaymentService) issueAndNotify(ctx context.Context, orderRef, ownerID, kind, img string) error {
	if _, err := s.Passes.IssuePass(ctx, ownerID, kind, img, time.Time{}); err != nil {
		return fmt.Errorf("failed to issue pass for order %s: %w", orderRef, err)
	}
	s.Logger.LogPayment("ISSUE", orderRef, fmt.Sprintf("Issued %s pass for owner %s", kind, ownerID))

	if s.Notifier != nil {
		if err := s.Notifier.SendPurchaseConfirmation(ctx, ownerID, kind); err != nil {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to send purchase confirmation for order %s: %v", orderRef, err))
		}
	}
	return nil
}
