package store

import (
	"context"

	"github.com/google/uuid"

	"flashcards.app/generator/core/db/sqlc"
	"flashcards.app/generator/internal/model"
)

type tagStore struct {
	queries *sqlc.Queries
}

func newTagStore(queries *sqlc.Queries) TagStore {
	return &tagStore{queries: queries}
}

func (s *tagStore) ListAvailable(ctx context.Context, userID uuid.UUID) ([]model.Tag, error) {
	rows, err := s.queries.ListAvailableTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags := make([]model.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, model.Tag{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	return tags, nil
}
