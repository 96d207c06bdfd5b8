package store

import (
	"context"

	"flashcards.app/generator/core/db/sqlc"
	"flashcards.app/generator/internal/model"
)

type flashcardStore struct {
	queries *sqlc.Queries
}

func newFlashcardStore(queries *sqlc.Queries) FlashcardStore {
	return &flashcardStore{queries: queries}
}

// Create returns ErrDuplicate when the owner already has a live card with the same fingerprint.
func (s *flashcardStore) Create(ctx context.Context, card *model.Flashcard) (*model.Flashcard, error) {
	row, err := s.queries.CreateFlashcard(ctx, sqlc.CreateFlashcardParams{
		ID:                   card.ID,
		UserID:               card.UserID,
		Front:                card.Front,
		Back:                 card.Back,
		Origin:               string(card.Origin),
		FrontBackFingerprint: card.FrontBackFingerprint,
		GenerationID:         card.GenerationID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &model.Flashcard{
		ID:                   row.ID,
		UserID:               row.UserID,
		Front:                row.Front,
		Back:                 row.Back,
		Origin:               model.FlashcardOrigin(row.Origin),
		FrontBackFingerprint: row.FrontBackFingerprint,
		GenerationID:         row.GenerationID,
		TagIDs:               []int64{},
		CreatedAt:            row.CreatedAt.Time,
	}, nil
}

func (s *flashcardStore) AddTags(ctx context.Context, flashcardID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return s.queries.AddFlashcardTags(ctx, sqlc.AddFlashcardTagsParams{
		FlashcardID: flashcardID,
		TagIds:      tagIDs,
	})
}
