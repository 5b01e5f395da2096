package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Estados de suscripción tal como los reporta la API de PayPal.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusSuspended = "SUSPENDED"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

// ErrUnavailable indica que no se pudo hablar con PayPal (red, timeout, 5xx).
// Es distinto de una respuesta negativa del proveedor.
var ErrUnavailable = errors.New("paypal unavailable")

// Subscription es la vista mínima de una suscripción que necesita el servicio.
type Subscription struct {
	ID              string
	Status          string
	PlanID          string
	SubscriberEmail string
}

// WebhookEvent es un evento de webhook ya parseado.
type WebhookEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime time.Time       `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

// VerifyParams reconstruye el contexto de transmisión que PayPal firma.
type VerifyParams struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
	EventBody        json.RawMessage
}

// Client define las operaciones del proveedor de pagos que usa el servicio.
type Client interface {
	GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID, reason string) error
	VerifyWebhookSignature(ctx context.Context, params VerifyParams) (bool, error)
}

// HTTPClient implementa Client contra la API REST de PayPal.
type HTTPClient struct {
	baseURL   string
	clientID  string
	secret    string
	webhookID string
	client    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewHTTPClient construye un cliente para modo sandbox o live.
func NewHTTPClient(clientID, secret, webhookID, mode string) *HTTPClient {
	baseURL := sandboxBaseURL
	if strings.EqualFold(mode, "live") {
		baseURL = liveBaseURL
	}
	return &HTTPClient{
		baseURL:   baseURL,
		clientID:  clientID,
		secret:    secret,
		webhookID: webhookID,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if subscriptionID == "" {
		return Subscription{}, errors.New("missing subscription id")
	}
	token, err := c.token(ctx)
	if err != nil {
		return Subscription{}, err
	}

	respBody, status, err := c.doWithRetry(ctx, http.MethodGet, "/v1/billing/subscriptions/"+url.PathEscape(subscriptionID), token, nil)
	if err != nil {
		return Subscription{}, err
	}
	if status == http.StatusNotFound {
		return Subscription{}, fmt.Errorf("subscription %s not found", subscriptionID)
	}
	if status >= 400 {
		return Subscription{}, fmt.Errorf("%w: get subscription status=%d", ErrUnavailable, status)
	}

	var sub subscriptionResponse
	if err := json.Unmarshal(respBody, &sub); err != nil {
		return Subscription{}, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return Subscription{
		ID:              sub.ID,
		Status:          sub.Status,
		PlanID:          sub.PlanID,
		SubscriberEmail: sub.Subscriber.EmailAddress,
	}, nil
}

func (c *HTTPClient) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	if subscriptionID == "" {
		return errors.New("missing subscription id")
	}
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return fmt.Errorf("marshal cancel request: %w", err)
	}

	// Sin retry automático: el caller decide si reintenta una cancelación.
	respBody, status, err := c.do(ctx, http.MethodPost, "/v1/billing/subscriptions/"+url.PathEscape(subscriptionID)+"/cancel", token, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// PayPal confirma la cancelación con 204; cualquier otra cosa no es
	// confirmación y el estado local no debe mutar.
	if status != http.StatusNoContent {
		return fmt.Errorf("%w: cancel subscription status=%d body=%s", ErrUnavailable, status, truncate(respBody, 256))
	}
	return nil
}

func (c *HTTPClient) VerifyWebhookSignature(ctx context.Context, params VerifyParams) (bool, error) {
	token, err := c.token(ctx)
	if err != nil {
		return false, err
	}

	reqBody, err := json.Marshal(verifyRequest{
		TransmissionID:   params.TransmissionID,
		TransmissionTime: params.TransmissionTime,
		TransmissionSig:  params.TransmissionSig,
		CertURL:          params.CertURL,
		AuthAlgo:         params.AuthAlgo,
		WebhookID:        c.webhookID,
		WebhookEvent:     params.EventBody,
	})
	if err != nil {
		return false, fmt.Errorf("marshal verify request: %w", err)
	}

	respBody, status, err := c.doWithRetry(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", token, reqBody)
	if err != nil {
		return false, err
	}
	if status >= 400 {
		return false, fmt.Errorf("%w: verify signature status=%d", ErrUnavailable, status)
	}

	var vr verifyResponse
	if err := json.Unmarshal(respBody, &vr); err != nil {
		return false, fmt.Errorf("unmarshal verify response: %w", err)
	}
	return vr.VerificationStatus == "SUCCESS", nil
}

// token devuelve un access token client-credentials, cacheado hasta expirar.
func (c *HTTPClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: token status=%d", ErrUnavailable, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUnavailable)
	}

	// Margen de 60s para no usar un token al borde de expirar; para tokens más
	// cortos que el margen se conserva la vida completa.
	lifetime := tr.ExpiresIn
	if lifetime > 60 {
		lifetime -= 60
	}

	c.mu.Lock()
	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(lifetime) * time.Second)
	c.mu.Unlock()

	return tr.AccessToken, nil
}

func (c *HTTPClient) doWithRetry(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	respBody, status, err := c.do(ctx, method, path, token, body)
	if err == nil {
		return respBody, status, nil
	}
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case <-time.After(500 * time.Millisecond):
	}
	respBody, status, err = c.do(ctx, method, path, token, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return respBody, status, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return respBody, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type subscriptionResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PlanID     string `json:"plan_id"`
	Subscriber struct {
		EmailAddress string `json:"email_address"`
	} `json:"subscriber"`
}

type verifyRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	TransmissionSig  string          `json:"transmission_sig"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}
