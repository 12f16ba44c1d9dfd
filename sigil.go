// Package sigil is an embeddable identity and live-notification core
// for social/chat backends: password and social-provider sign-in,
// signed session tokens, and filtered account-event subscriptions.
package sigil

import (
	"fmt"
	"time"

	"github.com/kelsara/sigil/core"
	"github.com/kelsara/sigil/pkg/cache"
	"github.com/kelsara/sigil/pubsub"
	"github.com/kelsara/sigil/services"
)

// interfaces
type (
	AccountStore    = core.AccountStore
	Cache           = core.Cache
	PasswordHandler = core.PasswordHandler
)

// structs
type (
	Account       = core.Account
	ProfilePatch  = core.ProfilePatch
	SocialProfile = core.SocialProfile
	SignUpInput   = core.SignUpInput
	SignInInput   = core.SignInInput
	AuthResult    = core.AuthResult
	Identity      = core.Identity
	CacheConfig   = core.CacheConfig
	CacheStats    = core.CacheStats

	TokenConfig = services.TokenConfig

	Event  = pubsub.Event
	Filter = pubsub.Filter
	Topic  = pubsub.Topic
)

const (
	defaultBasePath  = "/api/identity"
	defaultSecretLen = 32
)

const (
	TopicAccountCreated = pubsub.TopicAccountCreated
	TopicAccountUpdated = pubsub.TopicAccountUpdated
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache   = cache.NewInMemoryCache
	NewArgon2          = core.NewArgon2
	DefaultTokenConfig = services.DefaultTokenConfig
	KindOf             = core.KindOf
)

var (
	ErrAlreadySignedUp     = core.ErrAlreadySignedUp
	ErrEmailAlreadyClaimed = core.ErrEmailAlreadyClaimed
	ErrInvalidCredentials  = core.ErrInvalidCredentials
	ErrAccountNotFound     = core.ErrAccountNotFound
	ErrSignUpFailed        = core.ErrSignUpFailed
	ErrForbidden           = core.ErrForbidden
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidAuthHeader = core.ErrInvalidAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrTokenExpired      = core.ErrTokenExpired
	ErrStoreUnavailable  = core.ErrStoreUnavailable
)

var (
	ErrEmailRequired    = core.ErrEmailRequired
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrProviderRequired = core.ErrProviderRequired
	ErrNativeIDRequired = core.ErrNativeIDRequired
	ErrEmptyPatch       = core.ErrEmptyPatch
)

var (
	ErrStoreRequired       = core.ErrStoreRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

// HTTPAdapter wires a configured Sigil instance onto a transport.
type HTTPAdapter interface {
	RegisterRoutes(s *Sigil) error
}

// Config assembles a Sigil instance. Store and HTTP are required
// ports; everything else has defaults.
type Config struct {
	Secret string

	Store core.AccountStore

	HTTP HTTPAdapter

	// Optional config
	CacheAdapter   core.Cache
	DisableCache   bool
	TokenConfig    *services.TokenConfig
	PasswordHasher core.PasswordHandler
	BasePath       string
	// EventBuffer is the per-subscriber delivery channel capacity.
	EventBuffer int
}

// Sigil exposes the assembled orchestrators.
type Sigil struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Events   *pubsub.Broker
	BasePath string
}

func New(config Config) (*Sigil, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Store == nil {
		return nil, ErrStoreRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	var tokenConfig services.TokenConfig
	if config.TokenConfig != nil {
		// Copy before defaulting: the caller's struct stays untouched.
		tokenConfig = *config.TokenConfig
	} else {
		tokenConfig = services.DefaultTokenConfig(config.Secret)
	}
	if tokenConfig.Secret == "" {
		tokenConfig.Secret = config.Secret
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = core.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	broker := pubsub.NewBroker(config.EventBuffer)
	tokens := services.NewTokenIssuer(tokenConfig)

	sigil := &Sigil{
		Auth:     services.NewAuthService(config.Store, passwordHasher, tokens, broker, cacheAdapter),
		Profiles: services.NewProfileService(config.Store, broker, cacheAdapter),
		Events:   broker,
		BasePath: basePath,
	}

	if err := config.HTTP.RegisterRoutes(sigil); err != nil {
		return nil, err
	}

	return sigil, nil
}

// Close shuts the notification hub down, cancelling every live
// subscription.
func (s *Sigil) Close() {
	s.Events.Close()
}
