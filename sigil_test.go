package sigil

import (
	"errors"
	"testing"
	"time"

	"github.com/kelsara/sigil/core"
	"github.com/kelsara/sigil/services"
)

// fakeHTTPAdapter records route registration.
type fakeHTTPAdapter struct {
	registered bool
	basePath   string
	err        error
}

func (f *fakeHTTPAdapter) RegisterRoutes(s *Sigil) error {
	if f.err != nil {
		return f.err
	}
	f.registered = true
	f.basePath = s.BasePath
	return nil
}

const testSecret = "secretshouldbeatleast32charslong"

// Requirement: New validates required config and applies defaults.
func TestNew_ConfigValidation(t *testing.T) {
	store := services.NewFakeAccountStore()

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "missing secret",
			config:  Config{Store: store, HTTP: &fakeHTTPAdapter{}},
			wantErr: ErrSecretRequired,
		},
		{
			name:    "secret too short",
			config:  Config{Secret: "short", Store: store, HTTP: &fakeHTTPAdapter{}},
			wantErr: ErrSecretTooShort,
		},
		{
			name:    "missing store",
			config:  Config{Secret: testSecret, HTTP: &fakeHTTPAdapter{}},
			wantErr: ErrStoreRequired,
		},
		{
			name:    "missing http adapter",
			config:  Config{Secret: testSecret, Store: store},
			wantErr: ErrHTTPAdapterRequired,
		},
		{
			name:   "valid config",
			config: Config{Secret: testSecret, Store: store, HTTP: &fakeHTTPAdapter{}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := New(test.config)

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if s.Auth == nil || s.Profiles == nil || s.Events == nil {
				t.Error("New() left services unwired")
			}
			if s.BasePath != defaultBasePath {
				t.Errorf("base path = %q, want default %q", s.BasePath, defaultBasePath)
			}
		})
	}
}

// Requirement: New registers routes on the supplied adapter and
// surfaces registration failures.
func TestNew_RegistersRoutes(t *testing.T) {
	store := services.NewFakeAccountStore()

	adapter := &fakeHTTPAdapter{}
	s, err := New(Config{
		Secret:   testSecret,
		Store:    store,
		HTTP:     adapter,
		BasePath: "/auth",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if !adapter.registered {
		t.Error("expected RegisterRoutes to be called")
	}
	if adapter.basePath != "/auth" {
		t.Errorf("base path = %q, want %q", adapter.basePath, "/auth")
	}

	failing := &fakeHTTPAdapter{err: errors.New("route conflict")}
	if _, err := New(Config{Secret: testSecret, Store: store, HTTP: failing}); err == nil {
		t.Error("expected New() to surface route registration failure")
	}
}

// Requirement: New leaves the caller's config untouched when filling
// in token defaults.
func TestNew_DoesNotMutateTokenConfig(t *testing.T) {
	supplied := &TokenConfig{MaxAge: time.Hour}
	s, err := New(Config{
		Secret:      testSecret,
		Store:       services.NewFakeAccountStore(),
		HTTP:        &fakeHTTPAdapter{},
		TokenConfig: supplied,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	if supplied.Secret != "" {
		t.Errorf("caller token config secret = %q, want untouched empty", supplied.Secret)
	}
	if supplied.Issuer != "" || supplied.Now != nil {
		t.Errorf("caller token config defaulted: issuer=%q now set=%v", supplied.Issuer, supplied.Now != nil)
	}

	// The backfilled secret still applies to issued tokens.
	result, err := s.Auth.SignUp(SignUpInput{Email: "c@x.com", Password: "p"})
	if err != nil {
		t.Fatalf("SignUp() failed: %v", err)
	}
	if _, err := s.Auth.Resolve(result.Token); err != nil {
		t.Errorf("Resolve() failed: %v", err)
	}
}

// Requirement: an assembled instance runs the full sign-up → resolve →
// update → notify flow end to end.
func TestSigil_EndToEnd(t *testing.T) {
	store := services.NewFakeAccountStore()
	s, err := New(Config{
		Secret: testSecret,
		Store:  store,
		HTTP:   &fakeHTTPAdapter{},
		TokenConfig: &TokenConfig{
			Secret: testSecret,
			MaxAge: time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	result, err := s.Auth.SignUp(SignUpInput{
		Email:    "a@x.com",
		Password: "p",
		Name:     "A",
	})
	if err != nil {
		t.Fatalf("SignUp() failed: %v", err)
	}
	if result.Token == "" || result.Account.Email != "a@x.com" {
		t.Fatalf("SignUp() result = %+v", result)
	}

	// Immediate second sign-up with the same email conflicts.
	if _, err := s.Auth.SignUp(SignUpInput{Email: "a@x.com", Password: "p"}); !errors.Is(err, ErrAlreadySignedUp) {
		t.Fatalf("second SignUp() error = %v, want %v", err, ErrAlreadySignedUp)
	}

	account, err := s.Auth.Resolve(result.Token)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	sub := s.Events.Subscribe(TopicAccountUpdated, Filter{AccountID: account.ID})
	defer sub.Cancel()

	name := "New"
	updated, err := s.Profiles.Update(
		&Identity{AccountID: account.ID, Role: account.Role},
		account.ID,
		ProfilePatch{Name: &name},
	)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "New" {
		t.Errorf("updated name = %q, want %q", updated.Name, "New")
	}

	select {
	case ev := <-sub.Events():
		if ev.Account.ID != account.ID || ev.Account.Name != "New" {
			t.Errorf("event = %+v, want update for %q", ev, account.ID)
		}
	default:
		t.Fatal("expected an account-updated event")
	}

	// The cached resolver entry was invalidated by the update.
	fresh, err := s.Auth.Resolve(result.Token)
	if err != nil {
		t.Fatalf("Resolve() after update failed: %v", err)
	}
	if fresh.Name != "New" {
		t.Errorf("resolved name = %q, want %q", fresh.Name, "New")
	}
}

// Requirement: KindOf classifies the taxonomy for transport mapping.
func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.Kind
	}{
		{"already signed up", ErrAlreadySignedUp, core.KindConflict},
		{"email claimed", ErrEmailAlreadyClaimed, core.KindConflict},
		{"forbidden", ErrForbidden, core.KindForbidden},
		{"not found", ErrAccountNotFound, core.KindNotFound},
		{"invalid credentials", ErrInvalidCredentials, core.KindUnauthorized},
		{"expired token", ErrTokenExpired, core.KindUnauthorized},
		{"email required", ErrEmailRequired, core.KindInvalid},
		{"store unavailable", ErrStoreUnavailable, core.KindUpstream},
		{"sign up failed", ErrSignUpFailed, core.KindUpstream},
		{"unknown", errors.New("boom"), core.KindUpstream},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := KindOf(test.err); got != test.want {
				t.Errorf("KindOf(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
