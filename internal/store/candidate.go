package store

import (
	"context"

	"github.com/google/uuid"

	"flashcards.app/generator/core/db/sqlc"
	"flashcards.app/generator/internal/model"
)

type candidateStore struct {
	queries *sqlc.Queries
}

func newCandidateStore(queries *sqlc.Queries) CandidateStore {
	return &candidateStore{queries: queries}
}

// CreateBatch inserts all candidates with a single COPY.
func (s *candidateStore) CreateBatch(ctx context.Context, candidates []model.GenerationCandidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	params := make([]sqlc.CreateGenerationCandidatesParams, 0, len(candidates))
	for _, c := range candidates {
		tags := c.SuggestedTagIDs
		if tags == nil {
			tags = []int64{}
		}
		params = append(params, sqlc.CreateGenerationCandidatesParams{
			ID:                   c.ID,
			GenerationID:         c.GenerationID,
			UserID:               c.UserID,
			Front:                c.Front,
			Back:                 c.Back,
			FrontBackFingerprint: c.FrontBackFingerprint,
			Status:               string(c.Status),
			SuggestedTags:        tags,
		})
	}
	n, err := s.queries.CreateGenerationCandidates(ctx, params)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (s *candidateStore) ListByGeneration(ctx context.Context, generationID int64, userID uuid.UUID) ([]model.GenerationCandidate, error) {
	rows, err := s.queries.ListCandidatesByGeneration(ctx, sqlc.ListCandidatesByGenerationParams{
		GenerationID: generationID,
		UserID:       userID,
	})
	if err != nil {
		return nil, err
	}
	candidates := make([]model.GenerationCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, *toCandidateModel(row))
	}
	return candidates, nil
}

func (s *candidateStore) GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	row, err := s.queries.GetCandidateForUser(ctx, sqlc.GetCandidateForUserParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toCandidateModel(row), nil
}

// GetForUpdate locks the candidate row until the surrounding transaction ends.
func (s *candidateStore) GetForUpdate(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	row, err := s.queries.GetCandidateForUpdate(ctx, sqlc.GetCandidateForUpdateParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toCandidateModel(row), nil
}

func (s *candidateStore) UpdateContent(ctx context.Context, id int64, userID uuid.UUID, front, back, fingerprint string) (*model.GenerationCandidate, error) {
	row, err := s.queries.UpdateCandidateContent(ctx, sqlc.UpdateCandidateContentParams{
		ID:                   id,
		UserID:               userID,
		Front:                front,
		Back:                 back,
		FrontBackFingerprint: fingerprint,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toCandidateModel(row), nil
}

func (s *candidateStore) Accept(ctx context.Context, id int64, flashcardID int64) (*model.GenerationCandidate, error) {
	row, err := s.queries.AcceptCandidate(ctx, sqlc.AcceptCandidateParams{
		ID:                  id,
		AcceptedFlashcardID: &flashcardID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toCandidateModel(row), nil
}

func (s *candidateStore) Reject(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	row, err := s.queries.RejectCandidate(ctx, sqlc.RejectCandidateParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toCandidateModel(row), nil
}

func toCandidateModel(row sqlc.GenerationCandidate) *model.GenerationCandidate {
	tags := row.SuggestedTags
	if tags == nil {
		tags = []int64{}
	}
	return &model.GenerationCandidate{
		ID:                   row.ID,
		GenerationID:         row.GenerationID,
		UserID:               row.UserID,
		Front:                row.Front,
		Back:                 row.Back,
		FrontBackFingerprint: row.FrontBackFingerprint,
		Status:               model.CandidateStatus(row.Status),
		AcceptedFlashcardID:  row.AcceptedFlashcardID,
		SuggestedCategoryID:  row.SuggestedCategoryID,
		SuggestedTagIDs:      tags,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}
