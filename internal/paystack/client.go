package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const Gateway = "paystack"

// ErrUnavailable marks a transport or timeout failure talking to the
// gateway. Callers may retry; local state must not change.
var ErrUnavailable = errors.New("payment gateway unavailable")

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func New(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

type VerifyResult struct {
	Success       bool
	GatewayStatus string
	Reference     string
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Verify asks the gateway for the final state of a transaction reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return &VerifyResult{Reference: reference}, nil
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &VerifyResult{
		Success:       body.Status && body.Data.Status == "success",
		GatewayStatus: body.Data.Status,
		Reference:     body.Data.Reference,
	}, nil
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

// Initialize starts a checkout session and returns the redirect URL. Amounts
// are sent in the gateway's subunit (kobo/cents).
func (c *Client) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference, callbackURL string) (string, error) {
	payload := map[string]any{
		"email":        email,
		"amount":       amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		"reference":    reference,
		"callback_url": callbackURL,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", strings.NewReader(string(mustJSON(payload))))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("initialize failed: gateway returned %d", resp.StatusCode)
	}
	var body initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode initialize response: %w", err)
	}
	if !body.Status || body.Data.AuthorizationURL == "" {
		return "", errors.New("initialize failed: no authorization url")
	}
	return body.Data.AuthorizationURL, nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
