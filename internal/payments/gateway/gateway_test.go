package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/models"
	"github.com/jaevanlith/lorre-app/internal/payments/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string, timeout time.Duration) *gateway.Client {
	return gateway.NewClient(config.GatewayConfig{
		BaseURL:         baseURL,
		APIKey:          "test_api_key",
		MerchantAccount: "LorreNL",
		Timeout:         timeout,
	}, &logger.Logger{})
}

func TestSubmitPaymentSendsAPIKey(t *testing.T) {
	var gotKey, gotPath string
	var gotRequest models.PaymentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(models.PaymentResponse{ResultCode: models.ResultAuthorised, PSPReference: "psp-1"})
	}))
	defer server.Close()

	client := newClient(server.URL, 5*time.Second)
	resp, err := client.SubmitPayment(context.Background(), models.PaymentRequest{
		MerchantAccount: "LorreNL",
		Amount:          models.Amount{Currency: "EUR", Value: 850},
		Reference:       "order-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "test_api_key", gotKey)
	assert.Equal(t, "/payments", gotPath)
	assert.Equal(t, "order-1", gotRequest.Reference)
	assert.Equal(t, models.ResultAuthorised, resp.ResultCode)
	assert.Equal(t, "psp-1", resp.PSPReference)
	assert.NotEmpty(t, resp.Raw)
}

func TestSubmitDetailsPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/details", r.URL.Path)
		json.NewEncoder(w).Encode(models.PaymentResponse{ResultCode: models.ResultPending})
	}))
	defer server.Close()

	client := newClient(server.URL, 5*time.Second)
	resp, err := client.SubmitDetails(context.Background(), models.PaymentDetailsRequest{
		Details:     map[string]string{"redirectResult": "xyz"},
		PaymentData: "blob",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ResultPending, resp.ResultCode)
}

func TestNon2xxIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid Merchant Account"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := newClient(server.URL, 5*time.Second)
	_, err := client.AvailableMethods(context.Background(), models.PaymentMethodsRequest{})
	assert.ErrorIs(t, err, gateway.ErrUpstream)
}

func TestUnreachableGatewayIsUpstreamError(t *testing.T) {
	// Grab a port and close it again so nothing is listening there.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newClient(baseURL, time.Second)
	_, err := client.SubmitPayment(context.Background(), models.PaymentRequest{})
	assert.ErrorIs(t, err, gateway.ErrUpstream)
}

func TestTimeoutIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(models.PaymentResponse{ResultCode: models.ResultAuthorised})
	}))
	defer server.Close()

	client := newClient(server.URL, 20*time.Millisecond)
	_, err := client.SubmitPayment(context.Background(), models.PaymentRequest{})
	assert.ErrorIs(t, err, gateway.ErrUpstream)
}

func TestTransportErrorGetsOneRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Kill the connection without a response.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		json.NewEncoder(w).Encode(models.PaymentResponse{ResultCode: models.ResultAuthorised})
	}))
	defer server.Close()

	client := newClient(server.URL, 5*time.Second)
	resp, err := client.SubmitPayment(context.Background(), models.PaymentRequest{Reference: "order-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, models.ResultAuthorised, resp.ResultCode)
}
