package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Gateway result codes, as returned by the payment service provider.
const (
	ResultAuthorised = "Authorised"
	ResultCancelled  = "Cancelled"
	ResultRefused    = "Refused"
	ResultPending    = "Pending"
	ResultReceived   = "Received"
)

// PendingPaymentIntent tracks a payment that still needs shopper action.
// It exists from the moment the gateway returns a redirect action until the
// callback resolves it (authorised, cancelled or refused), at which point
// the row is deleted.
type PendingPaymentIntent struct {
	bun.BaseModel `bun:"table:pending_payment_intents"`

	OrderRef    string    `bun:"order_ref,pk" json:"order_ref"`
	OwnerID     string    `bun:"owner_id,notnull" json:"owner_id"`
	PassKind    string    `bun:"pass_kind,notnull" json:"pass_kind"`
	Img         string    `bun:"img" json:"img"`
	PaymentData string    `bun:"payment_data,notnull" json:"payment_data"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Amount is a money value in minor units, matching the gateway's format.
type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

type PaymentMethodsRequest struct {
	MerchantAccount       string   `json:"merchantAccount"`
	AllowedPaymentMethods []string `json:"allowedPaymentMethods,omitempty"`
	CountryCode           string   `json:"countryCode"`
	ShopperLocale         string   `json:"shopperLocale"`
	Amount                *Amount  `json:"amount,omitempty"`
	Channel               string   `json:"channel"`
}

type PaymentRequest struct {
	MerchantAccount string          `json:"merchantAccount"`
	PaymentMethod   json.RawMessage `json:"paymentMethod"`
	Amount          Amount          `json:"amount"`
	Reference       string          `json:"reference"`
	ReturnURL       string          `json:"returnUrl"`
}

type PaymentDetailsRequest struct {
	Details     map[string]string `json:"details"`
	PaymentData string            `json:"paymentData,omitempty"`
}

// PaymentAction is the gateway's instruction for further shopper
// interaction (typically a redirect to the shopper's bank).
type PaymentAction struct {
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Method      string `json:"method,omitempty"`
	PaymentData string `json:"paymentData,omitempty"`
}

type PaymentResponse struct {
	ResultCode   string          `json:"resultCode"`
	PSPReference string          `json:"pspReference,omitempty"`
	Action       *PaymentAction  `json:"action,omitempty"`
	Refusal      string          `json:"refusalReason,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// PaymentMethodsResponse is passed through to the drop-in component on the
// front-end untouched.
type PaymentMethodsResponse struct {
	PaymentMethods json.RawMessage `json:"paymentMethods"`
}
