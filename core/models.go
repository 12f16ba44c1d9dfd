package core

import "time"

// Account represents one user identity.
//
// An account is addressable by its email (local sign-up) or by its
// social key (provider sign-in), never by both independently: the same
// email must not resolve to two separately-created accounts.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	SocialKey string `json:"socialKey,omitempty"` // "<provider>_<native-id>"
	Role      string `json:"role"`

	// PasswordHash is set only for locally-created accounts.
	PasswordHash string `json:"-"` // Never expose in JSON

	// Profile fields, all optional and mutable.
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Photo    string `json:"photo,omitempty"`
	Birthday string `json:"birthday,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Phone    string `json:"phone,omitempty"`

	Verified  bool       `json:"verified"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"` // soft delete marker, storage-owned
}

// Public returns a copy safe to hand to subscribers and transport
// payloads: the password hash is cleared.
func (a *Account) Public() *Account {
	if a == nil {
		return nil
	}
	public := *a
	public.PasswordHash = ""
	return &public
}

// DefaultRole is assigned to every account at creation.
const DefaultRole = "user"

// ProfilePatch is a partial update to an account's profile.
// Nil fields are left untouched.
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Photo    *string `json:"photo,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Empty reports whether the patch carries no changes.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Nickname == nil && p.Photo == nil &&
		p.Birthday == nil && p.Gender == nil && p.Phone == nil
}

// SocialProfile is the provider-supplied identity presented during a
// social sign-in.
type SocialProfile struct {
	Provider string `json:"provider"`
	NativeID string `json:"nativeId"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// Key builds the composite social key "<provider>_<native-id>".
func (p SocialProfile) Key() string {
	return p.Provider + "_" + p.NativeID
}

// SignUpInput contains the data needed to register a local account
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// SignInInput contains the credentials for local authentication
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by every successful sign-in/sign-up flow.
type AuthResult struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// Identity is the verified claim set extracted from a session token.
type Identity struct {
	AccountID string `json:"accountId"`
	Role      string `json:"role"`
}
