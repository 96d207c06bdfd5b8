package generation

import (
	"context"

	"flashcards.app/generator/core/db"
	"flashcards.app/generator/core/db/sqlc"
	"flashcards.app/generator/internal/store"
)

// StoreProvider exposes the stores used inside the persist transaction.
// Local interface so service can depend on generation without a cycle.
type StoreProvider interface {
	Generations() store.GenerationStore
	Candidates() store.CandidateStore
}

// TxRunner runs functions within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}
