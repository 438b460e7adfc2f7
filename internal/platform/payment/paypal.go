package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PayPal wraps the PayPal REST API: OAuth2 client credentials, client
// tokens for the JS SDK, and Orders v2.
type PayPal struct {
	httpClient
	clientID string
	secret   string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func NewPayPal(clientID, secret, baseURL string, opts ...Option) *PayPal {
	return &PayPal{
		httpClient: newHTTPClient("paypal", strings.TrimRight(baseURL, "/"), opts),
		clientID:   clientID,
		secret:     secret,
		now:        time.Now,
	}
}

// token returns a cached access token, fetching a new one a minute before
// the current one expires.
func (p *PayPal) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken != "" && p.now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal build token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	p.accessToken = out.AccessToken
	p.expiresAt = p.now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}

func (p *PayPal) authorized(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	tok, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := p.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return req, nil
}

// ClientToken returns a client token for the PayPal JS SDK card fields.
func (p *PayPal) ClientToken(ctx context.Context) (string, error) {
	req, err := p.authorized(ctx, http.MethodPost, "/v1/identity/generate-token", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		ClientToken string `json:"client_token"`
	}
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	return out.ClientToken, nil
}

// CreateOrder creates a checkout order. amount is a decimal string such as
// "499.00"; intent is CAPTURE or AUTHORIZE.
func (p *PayPal) CreateOrder(ctx context.Context, amount, currency, intent string) (json.RawMessage, error) {
	body := map[string]interface{}{
		"intent": intent,
		"purchase_units": []map[string]interface{}{
			{"amount": map[string]string{"currency_code": currency, "value": amount}},
		},
	}
	req, err := p.authorized(ctx, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := p.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CaptureOrder captures an approved order.
func (p *PayPal) CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	req, err := p.authorized(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", nil)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := p.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
