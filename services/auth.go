package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelsara/sigil/core"
	"github.com/kelsara/sigil/pkg/crypto"
	"github.com/kelsara/sigil/pubsub"
)

// AuthService composes the credential verifier, the account store and
// the token issuer into the sign-in/sign-up flows. It holds no locks:
// uniqueness races are resolved by the store's atomic conditional
// inserts, and constraint violations surface as conflict errors.
type AuthService struct {
	store     core.AccountStore
	passwords core.PasswordHandler
	tokens    *TokenIssuer
	broker    *pubsub.Broker
	cache     core.Cache // optional, can be nil if caching is disabled
	nanoid    *crypto.NanoIDGenerator
}

func NewAuthService(store core.AccountStore, passwords core.PasswordHandler, tokens *TokenIssuer, broker *pubsub.Broker, cache core.Cache) *AuthService {
	nanoid, _ := crypto.NewNanoID()
	return &AuthService{
		store:     store,
		passwords: passwords,
		tokens:    tokens,
		broker:    broker,
		cache:     cache,
		nanoid:    nanoid,
	}
}

// SignUp registers a new local account with email and password.
// Publishes an account-created event after the account is persisted.
func (s *AuthService) SignUp(input core.SignUpInput) (*core.AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.nanoid.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account id: %w", err)
	}

	account := &core.Account{
		ID:           id,
		Email:        email,
		Role:         core.DefaultRole,
		PasswordHash: hash,
		Name:         input.Name,
		Nickname:     input.Nickname,
		Photo:        input.Photo,
		Verified:     true, // email present at creation
	}

	// Single atomic check-and-insert: a concurrent sign-up with the
	// same email loses here, not at a later constraint violation.
	created, err := s.store.CreateIfAbsent(account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		return nil, core.ErrAlreadySignedUp
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	// Persistence completed above; delivery is fire-and-forget.
	s.broker.Publish(pubsub.Event{
		Topic:   pubsub.TopicAccountCreated,
		Account: account.Public(),
	})

	return &core.AuthResult{Token: token, Account: account}, nil
}

// SignIn authenticates a local account by email and password.
func (s *AuthService) SignIn(input core.SignInInput) (*core.AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	account, err := s.store.FindByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.PasswordHash == "" {
		// Social-only account; it has no local credential to verify.
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwords.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{Token: token, Account: account}, nil
}

// SignInSocial resolves a provider-supplied identity to an account,
// creating one on first sign-in. Concurrent first sign-ins for the
// same native id race harmlessly: the store's find-or-create returns
// the single winning row to every caller.
func (s *AuthService) SignInSocial(profile core.SocialProfile) (*core.AuthResult, error) {
	provider := strings.TrimSpace(profile.Provider)
	if provider == "" {
		return nil, core.ErrProviderRequired
	}
	nativeID := strings.TrimSpace(profile.NativeID)
	if nativeID == "" {
		return nil, core.ErrNativeIDRequired
	}
	// The key is built from the normalized values, so " g1" and "g1"
	// resolve to the same account.
	profile.Provider = provider
	profile.NativeID = nativeID

	// A social sign-in must not silently merge into an account that
	// was created outside this provider's namespace.
	if email := strings.TrimSpace(profile.Email); email != "" {
		existing, err := s.store.FindByEmail(email)
		if err != nil && !errors.Is(err, core.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil && !strings.HasPrefix(existing.SocialKey, provider+"_") {
			return nil, core.ErrEmailAlreadyClaimed
		}
	}

	id, err := s.nanoid.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account id: %w", err)
	}

	// Seed values apply on first creation only; an existing row wins.
	defaults := &core.Account{
		ID:        id,
		Email:     strings.TrimSpace(profile.Email),
		SocialKey: profile.Key(),
		Role:      core.DefaultRole,
		Name:      profile.Name,
		Nickname:  profile.Nickname,
		Photo:     profile.Photo,
		Verified:  strings.TrimSpace(profile.Email) != "",
	}

	account, _, err := s.store.FindOrCreateBySocialKey(profile.Key(), defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve social account: %w", err)
	}
	if account == nil {
		// Degenerate store response: neither found nor created.
		return nil, core.ErrSignUpFailed
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{Token: token, Account: account}, nil
}

// Resolve turns a bearer token into the requesting account. Absence of
// a valid token means "not signed in" and surfaces as a token error;
// a valid token for a deleted account surfaces as not found.
func (s *AuthService) Resolve(token string) (*core.Account, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if account, err := s.cache.Get(identity.AccountID); err == nil && account != nil {
			return account, nil
		}
		// Cache miss - fall through to storage
	}

	account, err := s.store.FindByID(identity.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if s.cache != nil {
		// We don't fail the request if caching fails
		_ = s.cache.Set(account.ID, account)
	}

	return account, nil
}
