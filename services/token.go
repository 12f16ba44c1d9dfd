package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kelsara/sigil/core"
)

const defaultTokenIssuer = "sigil"

// TokenConfig defines how session tokens are signed and validated.
type TokenConfig struct {
	Secret string
	Issuer string
	// MaxAge bounds token lifetime. Zero falls back to 24h; tokens are
	// always issued with an expiry.
	MaxAge time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultTokenConfig returns the token settings used when the caller
// provides none.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret: secret,
		Issuer: defaultTokenIssuer,
		MaxAge: 24 * time.Hour,
	}
}

// sessionClaims is the internal claims type used for JWT signing and
// parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenIssuer turns a resolved account id into a signed, time-scoped
// bearer token and validates presented tokens. Tokens are stateless
// and self-verifying; there is no server-side revocation list.
type TokenIssuer struct {
	config TokenConfig
}

func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	if config.Issuer == "" {
		config.Issuer = defaultTokenIssuer
	}
	if config.MaxAge <= 0 {
		config.MaxAge = 24 * time.Hour
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &TokenIssuer{config: config}
}

// Issue signs a token binding accountID and role.
func (t *TokenIssuer) Issue(accountID, role string) (string, error) {
	now := t.config.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.Issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.MaxAge)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a presented token and returns the
// identity it binds. Expired tokens surface as ErrTokenExpired; every
// other validation failure is ErrInvalidToken.
func (t *TokenIssuer) Verify(token string) (*core.Identity, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) {
			return []byte(t.config.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.config.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, core.ErrInvalidToken
	}

	return &core.Identity{
		AccountID: claims.Subject,
		Role:      claims.Role,
	}, nil
}
