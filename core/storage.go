package core

// AccountStore is the storage port for account records. It is the only
// component that touches persisted state; orchestrators hold no locks
// and rely on the store to serialize conflicting writes on the unique
// keys (email, social key).
type AccountStore interface {
	// CreateIfAbsent inserts the account unless a live account with the
	// same email already exists. It reports whether the row was newly
	// created; false means the email is taken. The check and the insert
	// are a single atomic operation.
	CreateIfAbsent(a *Account) (bool, error)

	// FindOrCreateBySocialKey returns the account with the given social
	// key, creating it from defaults when absent. Atomic: concurrent
	// callers presenting the same key all observe the one winning row.
	// The boolean reports whether this call created the row.
	FindOrCreateBySocialKey(key string, defaults *Account) (*Account, bool, error)

	FindByID(id string) (*Account, error)
	FindByEmail(email string) (*Account, error)
	FindBySocialKey(key string) (*Account, error)

	// Update applies the non-nil patch fields to the account.
	Update(id string, patch ProfilePatch) error
}
