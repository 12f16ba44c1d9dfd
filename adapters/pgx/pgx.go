// Package pgx implements the sigil account store on PostgreSQL via
// pgxpool. Uniqueness races (email, social key) are resolved by the
// database's ON CONFLICT handling; see schema.sql for the expected
// table layout.
package pgx

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelsara/sigil"
	"github.com/kelsara/sigil/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ sigil.AccountStore = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// storeErr wraps driver failures so orchestrators classify them as
// upstream rather than business outcomes.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStoreUnavailable, op, err)
}
