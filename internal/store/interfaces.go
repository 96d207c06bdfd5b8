package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"flashcards.app/generator/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint
var ErrDuplicate = errors.New("duplicate")

// GenerationStore defines the contract for generation data access.
// Status changes are conditional on the expected prior status; the bool
// results report whether the row was in that status.
type GenerationStore interface {
	Create(ctx context.Context, gen *model.Generation) (*model.Generation, error)
	GetByID(ctx context.Context, id int64) (*model.Generation, error)
	GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error)
	ListPending(ctx context.Context) ([]model.Generation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]model.Generation, error)
	FindActiveByHash(ctx context.Context, userID uuid.UUID, hash string) (*model.Generation, error)

	ClaimPending(ctx context.Context, id int64, promptVersion string) (bool, *model.Generation, error)
	MarkSucceeded(ctx context.Context, id int64, promptTokens *int) (bool, error)
	MarkFailed(ctx context.Context, id int64, code, message string) (bool, error)
	CancelIfActive(ctx context.Context, id int64, userID uuid.UUID) (bool, *model.Generation, error)
	FailStaleRunning(ctx context.Context, startedBefore time.Time, code, message string) ([]int64, error)
}

// CandidateStore defines the contract for generation candidate data access
type CandidateStore interface {
	CreateBatch(ctx context.Context, candidates []model.GenerationCandidate) (int64, error)
	ListByGeneration(ctx context.Context, generationID int64, userID uuid.UUID) ([]model.GenerationCandidate, error)
	GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
	GetForUpdate(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
	UpdateContent(ctx context.Context, id int64, userID uuid.UUID, front, back, fingerprint string) (*model.GenerationCandidate, error)
	Accept(ctx context.Context, id int64, flashcardID int64) (*model.GenerationCandidate, error)
	Reject(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
}

// TagStore exposes the tag catalog visible to a user: global tags plus the user's own.
type TagStore interface {
	ListAvailable(ctx context.Context, userID uuid.UUID) ([]model.Tag, error)
}

type FlashcardStore interface {
	Create(ctx context.Context, card *model.Flashcard) (*model.Flashcard, error)
	AddTags(ctx context.Context, flashcardID int64, tagIDs []int64) error
}
