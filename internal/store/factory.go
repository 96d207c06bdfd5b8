package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"flashcards.app/generator/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Generations() GenerationStore {
	return newGenerationStore(s.queries)
}

func (s *Stores) Candidates() CandidateStore {
	return newCandidateStore(s.queries)
}

func (s *Stores) Tags() TagStore {
	return newTagStore(s.queries)
}

func (s *Stores) Flashcards() FlashcardStore {
	return newFlashcardStore(s.queries)
}

// mapError translates driver errors into the store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
