package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"
)

// ErrUpstream marks a failure of the payment provider itself (unreachable,
// timeout, non-2xx). Callers map it to the Error redirect page rather than a
// refusal.
var ErrUpstream = errors.New("payment gateway unavailable")

// Client talks to the provider's checkout API. Every call carries the
// merchant API key and is bounded by the configured timeout.
type Client struct {
	baseURL         string
	apiKey          string
	merchantAccount string
	httpClient      *http.Client
	log             *logger.Logger
}

func NewClient(cfg config.GatewayConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		merchantAccount: cfg.MerchantAccount,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		log:             log,
	}
}

func (c *Client) MerchantAccount() string {
	return c.merchantAccount
}

// AvailableMethods asks the provider which payment methods apply for the
// given amount. The response is relayed to the drop-in untouched.
func (c *Client) AvailableMethods(ctx context.Context, req models.PaymentMethodsRequest) (*models.PaymentMethodsResponse, error) {
	var resp models.PaymentMethodsResponse
	if err := c.post(ctx, "/paymentMethods", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitPayment starts a payment. The result either settles immediately or
// carries an action the shopper must complete first.
func (c *Client) SubmitPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	var resp models.PaymentResponse
	if err := c.post(ctx, "/payments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitDetails finishes a redirect payment with the parameters the shopper
// came back with.
func (c *Client) SubmitDetails(ctx context.Context, req models.PaymentDetailsRequest) (*models.PaymentResponse, error) {
	var resp models.PaymentResponse
	if err := c.post(ctx, "/payments/details", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends one JSON request to the provider. A transport failure gets a
// single retry; a second failure or a non-2xx status surfaces as ErrUpstream.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	resp, err := c.doOnce(ctx, path, payload)
	if err != nil {
		c.log.Warn("GATEWAY", fmt.Sprintf("Retrying %s after transport error: %v", path, err))
		resp, err = c.doOnce(ctx, path, payload)
	}
	if err != nil {
		c.log.Error("GATEWAY", fmt.Sprintf("Request to %s failed: %v", path, err))
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("GATEWAY", fmt.Sprintf("Request to %s returned %d: %s", path, resp.StatusCode, data))
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if pr, ok := out.(*models.PaymentResponse); ok {
		pr.Raw = data
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	return c.httpClient.Do(req)
}
