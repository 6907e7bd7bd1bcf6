package sqlite

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/altostack/webcore/internal/webcore/store"
)

// txStore is a Tx-scoped store: same repos, bound to one sqlx.Tx.
type txStore struct {
	tx *sqlx.Tx
}

func newTx(tx *sqlx.Tx) *txStore { return &txStore{tx: tx} }

func (t *txStore) Users() store.Users                 { return &usersRepo{ext: t.tx} }
func (t *txStore) OTPIssues() store.OTPIssues         { return &otpIssuesRepo{ext: t.tx} }
func (t *txStore) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{ext: t.tx} }
func (t *txStore) LogEntries() store.LogEntries       { return &logEntriesRepo{ext: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Nested transactions are a programming error; the methods below exist only
// to satisfy store.Store.

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errors.New("sqlite: nested transactions are not supported")
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errors.New("sqlite: nested transactions are not supported")
}

func (t *txStore) ApplyMigrations() error {
	return errors.New("sqlite: cannot migrate inside a transaction")
}

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }
