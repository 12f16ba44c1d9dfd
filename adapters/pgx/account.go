package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kelsara/sigil/core"
)

const accountColumns = `id, email, social_key, role, password_hash,
	name, nickname, photo, birthday, gender, phone,
	verified, created_at, updated_at`

func (a *Adapter) CreateIfAbsent(account *core.Account) (bool, error) {
	ctx := context.Background()

	// The partial unique index on live emails makes the existence
	// check and the insert one atomic statement.
	query := `INSERT INTO accounts
		(id, email, social_key, role, password_hash, name, nickname, photo, birthday, gender, phone, verified)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (email) WHERE deleted_at IS NULL DO NOTHING
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query,
		account.ID, account.Email, account.SocialKey, account.Role, account.PasswordHash,
		account.Name, account.Nickname, account.Photo, account.Birthday, account.Gender, account.Phone,
		account.Verified,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: a live account already holds this email.
			return false, nil
		}
		return false, storeErr("create account", err)
	}

	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt
	return true, nil
}

func (a *Adapter) FindOrCreateBySocialKey(key string, defaults *core.Account) (*core.Account, bool, error) {
	ctx := context.Background()

	// Single-writer-wins upsert: the no-op DO UPDATE locks and returns
	// the existing row, and (xmax = 0) reports whether this statement
	// inserted it. Every concurrent caller observes the same row.
	query := `INSERT INTO accounts
		(id, email, social_key, role, password_hash, name, nickname, photo, birthday, gender, phone, verified)
		VALUES ($1, NULLIF($2, ''), $3, $4, '', $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (social_key) DO UPDATE SET social_key = EXCLUDED.social_key
		RETURNING ` + accountColumns + `, (xmax = 0) AS inserted`

	account := &core.Account{}
	var inserted bool
	err := a.pool.QueryRow(ctx, query,
		defaults.ID, defaults.Email, key, defaults.Role,
		defaults.Name, defaults.Nickname, defaults.Photo, defaults.Birthday, defaults.Gender, defaults.Phone,
		defaults.Verified,
	).Scan(scanTargets(account, &inserted)...)
	if err != nil {
		// The seed email can still lose a race against a concurrent
		// local sign-up; surface that as the conflict it is.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, false, core.ErrEmailAlreadyClaimed
		}
		return nil, false, storeErr("find or create account", err)
	}

	return account, inserted, nil
}

func (a *Adapter) FindByID(id string) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`
	return a.findOne("find account by id", query, id)
}

func (a *Adapter) FindByEmail(email string) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 AND deleted_at IS NULL`
	return a.findOne("find account by email", query, email)
}

func (a *Adapter) FindBySocialKey(key string) (*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE social_key = $1 AND deleted_at IS NULL`
	return a.findOne("find account by social key", query, key)
}

func (a *Adapter) Update(id string, patch core.ProfilePatch) error {
	ctx := context.Background()

	assignments := []string{"updated_at = now()"}
	args := []any{id}
	appendField := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendField("name", patch.Name)
	appendField("nickname", patch.Nickname)
	appendField("photo", patch.Photo)
	appendField("birthday", patch.Birthday)
	appendField("gender", patch.Gender)
	appendField("phone", patch.Phone)

	query := fmt.Sprintf(
		`UPDATE accounts SET %s WHERE id = $1 AND deleted_at IS NULL`,
		strings.Join(assignments, ", "),
	)

	tag, err := a.pool.Exec(ctx, query, args...)
	if err != nil {
		return storeErr("update account", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (a *Adapter) findOne(op, query string, arg any) (*core.Account, error) {
	ctx := context.Background()

	account := &core.Account{}
	err := a.pool.QueryRow(ctx, query, arg).Scan(scanTargets(account)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, storeErr(op, err)
	}
	return account, nil
}

// scanTargets lists the destinations matching accountColumns, with
// nullable text columns mapped onto the account's plain strings.
func scanTargets(account *core.Account, extra ...any) []any {
	targets := []any{
		&account.ID,
		nullable(&account.Email),
		nullable(&account.SocialKey),
		&account.Role,
		&account.PasswordHash,
		&account.Name,
		&account.Nickname,
		&account.Photo,
		&account.Birthday,
		&account.Gender,
		&account.Phone,
		&account.Verified,
		&account.CreatedAt,
		&account.UpdatedAt,
	}
	return append(targets, extra...)
}

type nullString struct {
	dest *string
}

func nullable(dest *string) *nullString {
	return &nullString{dest: dest}
}

func (n *nullString) Scan(value any) error {
	if value == nil {
		*n.dest = ""
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into string", value)
	}
	*n.dest = s
	return nil
}
