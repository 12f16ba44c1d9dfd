package services

import (
	"errors"
	"testing"
	"time"

	"github.com/kelsara/sigil/core"
)

const testSecret = "test-secret-test-secret-test-secret"

// Requirement: issued tokens verify back to the identity they bind.
func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: testSecret})

	token, err := issuer.Issue("account-1", "user")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	identity, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if identity.AccountID != "account-1" {
		t.Errorf("account id = %q, want %q", identity.AccountID, "account-1")
	}
	if identity.Role != "user" {
		t.Errorf("role = %q, want %q", identity.Role, "user")
	}
}

// Requirement: verification rejects tampered and foreign tokens.
func TestTokenIssuer_Verify_Invalid(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: testSecret})
	otherIssuer := NewTokenIssuer(TokenConfig{Secret: "another-secret-another-secret-12345"})
	foreignToken, err := otherIssuer.Issue("account-1", "user")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not.a.jwt"},
		{name: "token signed with a different secret", token: foreignToken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := issuer.Verify(test.token); !errors.Is(err, core.ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want %v", err, core.ErrInvalidToken)
			}
		})
	}
}

// Requirement: tokens carry an expiry and verification fails once it
// has passed.
func TestTokenIssuer_Verify_Expired(t *testing.T) {
	now := time.Now()
	clock := now
	issuer := NewTokenIssuer(TokenConfig{
		Secret: testSecret,
		MaxAge: time.Minute,
		Now:    func() time.Time { return clock },
	})

	token, err := issuer.Issue("account-1", "user")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("Verify() before expiry failed: %v", err)
	}

	clock = now.Add(2 * time.Minute)
	if _, err := issuer.Verify(token); !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("Verify() after expiry error = %v, want %v", err, core.ErrTokenExpired)
	}
}

// Requirement: tokens bind the configured issuer; tokens minted under
// a different issuer name are rejected.
func TestTokenIssuer_Verify_WrongIssuer(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{Secret: testSecret, Issuer: "identity"})
	other := NewTokenIssuer(TokenConfig{Secret: testSecret, Issuer: "someone-else"})

	token, err := other.Issue("account-1", "user")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want %v", err, core.ErrInvalidToken)
	}
}
