package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
)

const defaultTimeout = 10 * time.Second

// Client talks to the hosted identity provider's admin REST API. It
// implements port.IdentityProvider and classifies the provider's error codes
// into the port sentinels so callers never see raw HTTP details.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a new identity provider client.
func NewClient(cfg config.IdentitySettings, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	UserID string `json:"user_id"`
}

// CreateCredential provisions a new account and returns the provider user id.
func (c *Client) CreateCredential(ctx context.Context, email, secret string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/admin/v1/accounts", createAccountRequest{
		Email:    email,
		Password: secret,
	})
	if err != nil {
		return "", err
	}

	var resp createAccountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode create account response: %w", err)
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("provider returned empty user id")
	}

	return resp.UserID, nil
}

// SendVerificationEmail asks the provider to dispatch an address verification email.
func (c *Client) SendVerificationEmail(ctx context.Context, externalID string) error {
	path := fmt.Sprintf("/admin/v1/accounts/%s/verification-email", externalID)
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// SendPasswordResetEmail asks the provider to dispatch a password reset email.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/v1/password-reset-emails", struct {
		Email string `json:"email"`
	}{Email: email})
	return err
}

// SetExternalClaims stores the claims payload on the provider account.
func (c *Client) SetExternalClaims(ctx context.Context, externalID string, claims domain.Claims) error {
	path := fmt.Sprintf("/admin/v1/accounts/%s/claims", externalID)
	_, err := c.do(ctx, http.MethodPut, path, claims)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.classify(resp.StatusCode, body)
	}

	return body, nil
}

// classify maps the provider's error codes onto the port sentinels. Codes we
// do not recognize surface as plain errors carrying the status and code.
func (c *Client) classify(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("identity provider returned status %d", status)
	}

	switch apiErr.Code {
	case "EMAIL_EXISTS":
		return fmt.Errorf("%s: %w", apiErr.Message, port.ErrEmailExists)
	case "INVALID_EMAIL":
		return fmt.Errorf("%s: %w", apiErr.Message, port.ErrInvalidEmail)
	case "WEAK_PASSWORD":
		return fmt.Errorf("%s: %w", apiErr.Message, port.ErrWeakSecret)
	case "ACCOUNT_NOT_FOUND":
		return fmt.Errorf("%s: %w", apiErr.Message, port.ErrAccountNotFound)
	default:
		c.logger.Warn("unclassified identity provider error",
			zap.Int("status", status),
			zap.String("code", apiErr.Code),
		)
		return fmt.Errorf("identity provider error %s (status %d)", apiErr.Code, status)
	}
}

var _ port.IdentityProvider = (*Client)(nil)
