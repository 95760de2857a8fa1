package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := Middleware(noopVerifier{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("next handler must not run")
	}))

	for _, header := range []string{"", "Basic abc", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestMiddlewareStoresUser(t *testing.T) {
	var got AuthenticatedUser
	handler := Middleware(noopVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Fatalf("expected user in context")
		}
		got = user
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "bearer user_2abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got.UserID != "user_2abc" {
		t.Fatalf("expected user_2abc, got %q", got.UserID)
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(context.Context, string) (AuthenticatedUser, error) {
	return AuthenticatedUser{}, errors.New("expired")
}

func TestMiddlewareRejectsUnverifiedToken(t *testing.T) {
	handler := Middleware(failingVerifier{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("next handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestNewVerifier(t *testing.T) {
	if _, err := NewVerifier(Config{Mode: ModeNoop}); err != nil {
		t.Fatalf("noop verifier: %v", err)
	}
	if _, err := NewVerifier(Config{Mode: ModeClerk}); err == nil {
		t.Fatalf("expected error when JWKS URL is missing")
	}
	if _, err := NewVerifier(Config{Mode: "saml"}); err == nil {
		t.Fatalf("expected error for unsupported mode")
	}
}

func TestClerkVerifierParsesClaims(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	v := &clerkVerifier{
		keyFunc: func(*jwt.Token) (any, error) { return &key.PublicKey, nil },
		issuer:  "https://clerk.focusnest.dev",
	}

	exp := time.Now().Add(time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user_123",
		"sid": "sess_456",
		"iss": "https://clerk.focusnest.dev",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	user, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if user.UserID != "user_123" || user.SessionID != "sess_456" || user.ExpiresAt != exp.Unix() {
		t.Fatalf("unexpected user: %+v", user)
	}

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user_123",
		"iss": "https://evil.example",
		"exp": exp.Unix(),
	})
	signed, _ = wrongIssuer.SignedString(key)
	if _, err := v.Verify(context.Background(), signed); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}
}
