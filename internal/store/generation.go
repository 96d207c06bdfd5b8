package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"flashcards.app/generator/core/db/sqlc"
	"flashcards.app/generator/internal/model"
)

type generationStore struct {
	queries *sqlc.Queries
}

func newGenerationStore(queries *sqlc.Queries) GenerationStore {
	return &generationStore{queries: queries}
}

func (s *generationStore) Create(ctx context.Context, gen *model.Generation) (*model.Generation, error) {
	row, err := s.queries.CreateGeneration(ctx, sqlc.CreateGenerationParams{
		ID:                   gen.ID,
		UserID:               gen.UserID,
		Model:                gen.Model,
		SanitizedInputText:   gen.SourceText,
		SanitizedInputLength: int32(gen.SourceTextLength),
		SanitizedInputSha256: gen.SourceTextHash,
		Temperature:          gen.Temperature,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toGenerationModel(row), nil
}

func (s *generationStore) GetByID(ctx context.Context, id int64) (*model.Generation, error) {
	row, err := s.queries.GetGeneration(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return toGenerationModel(row), nil
}

func (s *generationStore) GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error) {
	row, err := s.queries.GetGenerationForUser(ctx, sqlc.GetGenerationForUserParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toGenerationModel(row), nil
}

func (s *generationStore) ListPending(ctx context.Context) ([]model.Generation, error) {
	rows, err := s.queries.ListPendingGenerations(ctx)
	if err != nil {
		return nil, err
	}
	return toGenerationModels(rows), nil
}

func (s *generationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]model.Generation, error) {
	rows, err := s.queries.ListGenerationsByUser(ctx, sqlc.ListGenerationsByUserParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return toGenerationModels(rows), nil
}

func (s *generationStore) FindActiveByHash(ctx context.Context, userID uuid.UUID, hash string) (*model.Generation, error) {
	row, err := s.queries.FindActiveGenerationByHash(ctx, sqlc.FindActiveGenerationByHashParams{
		UserID:               userID,
		SanitizedInputSha256: hash,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toGenerationModel(row), nil
}

func (s *generationStore) ClaimPending(ctx context.Context, id int64, promptVersion string) (bool, *model.Generation, error) {
	row, err := s.queries.ClaimPendingGeneration(ctx, sqlc.ClaimPendingGenerationParams{
		ID:            id,
		PromptVersion: &promptVersion,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not pending any more (claimed elsewhere or cancelled)
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, toGenerationModel(row), nil
}

func (s *generationStore) MarkSucceeded(ctx context.Context, id int64, promptTokens *int) (bool, error) {
	var tokens *int32
	if promptTokens != nil {
		t := int32(*promptTokens)
		tokens = &t
	}
	n, err := s.queries.MarkGenerationSucceeded(ctx, sqlc.MarkGenerationSucceededParams{
		ID:           id,
		PromptTokens: tokens,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *generationStore) MarkFailed(ctx context.Context, id int64, code, message string) (bool, error) {
	n, err := s.queries.MarkGenerationFailed(ctx, sqlc.MarkGenerationFailedParams{
		ID:           id,
		ErrorCode:    &code,
		ErrorMessage: &message,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *generationStore) CancelIfActive(ctx context.Context, id int64, userID uuid.UUID) (bool, *model.Generation, error) {
	row, err := s.queries.CancelGeneration(ctx, sqlc.CancelGenerationParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, toGenerationModel(row), nil
}

func (s *generationStore) FailStaleRunning(ctx context.Context, startedBefore time.Time, code, message string) ([]int64, error) {
	return s.queries.FailStaleRunningGenerations(ctx, sqlc.FailStaleRunningGenerationsParams{
		ErrorCode:    &code,
		ErrorMessage: &message,
		StartedAt:    pgtype.Timestamptz{Time: startedBefore, Valid: true},
	})
}

func toGenerationModels(rows []sqlc.Generation) []model.Generation {
	gens := make([]model.Generation, 0, len(rows))
	for _, row := range rows {
		gens = append(gens, *toGenerationModel(row))
	}
	return gens
}

func toGenerationModel(row sqlc.Generation) *model.Generation {
	var promptTokens *int
	if row.PromptTokens != nil {
		t := int(*row.PromptTokens)
		promptTokens = &t
	}
	return &model.Generation{
		ID:               row.ID,
		UserID:           row.UserID,
		Model:            row.Model,
		Status:           model.GenerationStatus(row.Status),
		SourceText:       row.SanitizedInputText,
		SourceTextLength: int(row.SanitizedInputLength),
		SourceTextHash:   row.SanitizedInputSha256,
		Temperature:      row.Temperature,
		PromptTokens:     promptTokens,
		PromptVersion:    row.PromptVersion,
		ErrorCode:        row.ErrorCode,
		ErrorMessage:     row.ErrorMessage,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
		StartedAt:        timePtr(row.StartedAt),
		CompletedAt:      timePtr(row.CompletedAt),
	}
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
