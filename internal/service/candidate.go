package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"flashcards.app/generator/common/id"
	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/store"
)

const (
	maxFrontLength = 200
	maxBackLength  = 500
)

type CandidateService interface {
	Edit(ctx context.Context, id int64, userID uuid.UUID, front, back string) (*model.GenerationCandidate, error)
	Accept(ctx context.Context, id int64, userID uuid.UUID) (*model.Flashcard, *model.GenerationCandidate, error)
	Reject(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
}

type candidateService struct {
	candidates store.CandidateStore
	txRunner   TxRunner
}

func NewCandidateService(candidates store.CandidateStore, txRunner TxRunner) CandidateService {
	return &candidateService{candidates: candidates, txRunner: txRunner}
}

func (s *candidateService) Edit(ctx context.Context, id int64, userID uuid.UUID, front, back string) (*model.GenerationCandidate, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if err := checkSide("front", front, maxFrontLength); err != nil {
		return nil, err
	}
	if err := checkSide("back", back, maxBackLength); err != nil {
		return nil, err
	}

	candidate, err := s.candidates.UpdateContent(ctx, id, userID, front, back, generation.Fingerprint(front, back))
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.explainMiss(ctx, id, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("updating candidate: %w", err)
	}
	return candidate, nil
}

// Accept turns the candidate into a flashcard carrying its suggested tags.
// Edited candidates produce ai-edited cards, untouched ones ai-full.
func (s *candidateService) Accept(ctx context.Context, candidateID int64, userID uuid.UUID) (*model.Flashcard, *model.GenerationCandidate, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CandidateID: &candidateID,
		UserID:      logger.Ptr(userID.String()),
		Component:   "generator.service.candidate",
	})

	var (
		card     *model.Flashcard
		accepted *model.GenerationCandidate
	)
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		candidate, err := stores.Candidates().GetForUpdate(ctx, candidateID, userID)
		if err != nil {
			return err
		}
		if !candidate.Status.IsReviewable() {
			return fmt.Errorf("candidate is %s: %w", candidate.Status, ErrInvalidTransition)
		}

		origin := model.FlashcardOriginAIFull
		if candidate.Status == model.CandidateStatusEdited {
			origin = model.FlashcardOriginAIEdited
		}
		generationID := candidate.GenerationID

		card, err = stores.Flashcards().Create(ctx, &model.Flashcard{
			ID:                   id.New(),
			UserID:               userID,
			Front:                candidate.Front,
			Back:                 candidate.Back,
			Origin:               origin,
			FrontBackFingerprint: candidate.FrontBackFingerprint,
			GenerationID:         &generationID,
		})
		if errors.Is(err, store.ErrDuplicate) {
			return ErrDuplicateFlashcard
		}
		if err != nil {
			return fmt.Errorf("creating flashcard: %w", err)
		}

		if len(candidate.SuggestedTagIDs) > 0 {
			if err := stores.Flashcards().AddTags(ctx, card.ID, candidate.SuggestedTagIDs); err != nil {
				return fmt.Errorf("tagging flashcard: %w", err)
			}
			card.TagIDs = candidate.SuggestedTagIDs
		}

		accepted, err = stores.Candidates().Accept(ctx, candidate.ID, card.ID)
		if err != nil {
			return fmt.Errorf("linking candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.InfoContext(ctx, "candidate accepted",
		"candidate_id", accepted.ID,
		"flashcard_id", card.ID,
		"origin", card.Origin)
	return card, accepted, nil
}

func (s *candidateService) Reject(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	candidate, err := s.candidates.Reject(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.explainMiss(ctx, id, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("rejecting candidate: %w", err)
	}
	return candidate, nil
}

// explainMiss tells apart a guarded update that matched no row because the
// candidate does not exist from one where it was already decided.
func (s *candidateService) explainMiss(ctx context.Context, id int64, userID uuid.UUID) error {
	candidate, err := s.candidates.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	return fmt.Errorf("candidate is %s: %w", candidate.Status, ErrInvalidTransition)
}

func checkSide(field, value string, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return invalid(field, "must not be empty")
	}
	if n > max {
		return invalid(field, "must be at most %d characters, got %d", max, n)
	}
	return nil
}
