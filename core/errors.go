package core

import "errors"

// Sign-in / sign-up errors
var (
	// Conflict errors
	ErrAlreadySignedUp     = errors.New("an account with this email already exists") // 409 Conflict
	ErrEmailAlreadyClaimed = errors.New("email belongs to an existing account")      // 409 Conflict

	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
	ErrAccountNotFound    = errors.New("account not found")         // 404 Not Found

	// ErrSignUpFailed covers the degenerate find-or-create outcome:
	// the store reported neither an existing row nor a created one.
	ErrSignUpFailed = errors.New("sign up failed") // 500
)

// Authorization errors
var (
	ErrForbidden = errors.New("operation not permitted on another account") // 403
)

// Token errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")                            // 401
	ErrInvalidAuthHeader = errors.New("invalid authorization format, expected 'Bearer <token>'") // 401
	ErrInvalidToken      = errors.New("invalid session token")                                   // 401
	ErrTokenExpired      = errors.New("session token expired")                                   // 401
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")               // 400
	ErrPasswordRequired = errors.New("password is required")            // 400
	ErrProviderRequired = errors.New("social provider is required")     // 400
	ErrNativeIDRequired = errors.New("provider account id is required") // 400
	ErrEmptyPatch       = errors.New("patch contains no fields")        // 400
)

// Upstream errors
var (
	// ErrStoreUnavailable wraps storage failures that are not a
	// business outcome. Orchestrators propagate it unchanged.
	ErrStoreUnavailable = errors.New("account store unavailable") // 502

	ErrCacheNotFound = errors.New("account not found in cache")
)

// Config errors (server-side configuration)
var (
	ErrStoreRequired       = errors.New("account store is required") // 500
	ErrHTTPAdapterRequired = errors.New("http adapter is required")  // 500
	ErrSecretRequired      = errors.New("secret is required")        // 500
	ErrSecretTooShort      = errors.New("secret too short")          // 500
)

// Kind tags an error with its taxonomy class so callers can decide
// retry vs. surface without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindConflict
	KindForbidden
	KindNotFound
	KindInvalid
	KindUnauthorized
	KindUpstream
)

// KindOf classifies err into its taxonomy kind. Unrecognized errors are
// upstream failures: the orchestrators never invent new user-facing
// conditions.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrAlreadySignedUp), errors.Is(err, ErrEmailAlreadyClaimed):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return KindUnauthorized
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrProviderRequired),
		errors.Is(err, ErrNativeIDRequired),
		errors.Is(err, ErrEmptyPatch):
		return KindInvalid
	default:
		return KindUpstream
	}
}
