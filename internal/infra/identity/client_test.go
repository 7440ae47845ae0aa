package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.IdentitySettings{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestClientCreateCredential(t *testing.T) {
	var gotAuth string
	var gotBody createAccountRequest

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/v1/accounts" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createAccountResponse{UserID: "idp-123"})
	}))

	id, err := client.CreateCredential(context.Background(), "thandi@example.com", "s3cr3t-value")
	if err != nil {
		t.Fatalf("CreateCredential returned error: %v", err)
	}
	if id != "idp-123" {
		t.Fatalf("expected idp-123, got %s", id)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody.Email != "thandi@example.com" || gotBody.Password != "s3cr3t-value" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
}

func TestClientClassifiesProviderErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		code     string
		expected error
	}{
		{name: "duplicate email", status: http.StatusConflict, code: "EMAIL_EXISTS", expected: port.ErrEmailExists},
		{name: "invalid email", status: http.StatusBadRequest, code: "INVALID_EMAIL", expected: port.ErrInvalidEmail},
		{name: "weak password", status: http.StatusBadRequest, code: "WEAK_PASSWORD", expected: port.ErrWeakSecret},
		{name: "account missing", status: http.StatusNotFound, code: "ACCOUNT_NOT_FOUND", expected: port.ErrAccountNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(apiError{Code: tc.code, Message: "rejected"})
			}))

			_, err := client.CreateCredential(context.Background(), "someone@example.com", "secret")
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestClientUnclassifiedError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(apiError{Code: "RATE_LIMITED", Message: "slow down"})
	}))

	_, err := client.CreateCredential(context.Background(), "someone@example.com", "secret")
	if err == nil {
		t.Fatalf("expected error for unclassified code")
	}
	for _, sentinel := range []error{port.ErrEmailExists, port.ErrInvalidEmail, port.ErrWeakSecret, port.ErrAccountNotFound} {
		if errors.Is(err, sentinel) {
			t.Fatalf("unclassified error must not match %v", sentinel)
		}
	}
}

func TestClientSetExternalClaims(t *testing.T) {
	var gotClaims domain.Claims

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/admin/v1/accounts/idp-123/claims" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotClaims); err != nil {
			t.Fatalf("decode claims: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	claims := domain.Claims{
		Role:        "admin",
		Permissions: []domain.PermissionID{domain.PermViewStaff},
		CentreIDs:   []string{"centre-a"},
		UpdatedAt:   time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := client.SetExternalClaims(context.Background(), "idp-123", claims); err != nil {
		t.Fatalf("SetExternalClaims returned error: %v", err)
	}
	if gotClaims.Role != "admin" || len(gotClaims.Permissions) != 1 {
		t.Fatalf("unexpected claims received: %+v", gotClaims)
	}
}

func TestClientVerificationEmailAccountMissing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/v1/accounts/missing/verification-email" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apiError{Code: "ACCOUNT_NOT_FOUND", Message: "no such account"})
	}))

	err := client.SendVerificationEmail(context.Background(), "missing")
	if !errors.Is(err, port.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
