package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/service"
	"flashcards.app/generator/internal/store"
)

type mockGenerationStore struct {
	createFn           func(ctx context.Context, gen *model.Generation) (*model.Generation, error)
	getByIDForUserFn   func(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error)
	listByUserFn       func(ctx context.Context, userID uuid.UUID, limit int32) ([]model.Generation, error)
	findActiveByHashFn func(ctx context.Context, userID uuid.UUID, hash string) (*model.Generation, error)
	cancelIfActiveFn   func(ctx context.Context, id int64, userID uuid.UUID) (bool, *model.Generation, error)

	createCalls int
}

func (m *mockGenerationStore) Create(ctx context.Context, gen *model.Generation) (*model.Generation, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, gen)
	}
	return gen, nil
}

func (m *mockGenerationStore) GetByID(context.Context, int64) (*model.Generation, error) {
	return nil, store.ErrNotFound
}

func (m *mockGenerationStore) GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error) {
	if m.getByIDForUserFn != nil {
		return m.getByIDForUserFn(ctx, id, userID)
	}
	return nil, store.ErrNotFound
}

func (m *mockGenerationStore) ListPending(context.Context) ([]model.Generation, error) {
	return nil, nil
}

func (m *mockGenerationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]model.Generation, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockGenerationStore) FindActiveByHash(ctx context.Context, userID uuid.UUID, hash string) (*model.Generation, error) {
	if m.findActiveByHashFn != nil {
		return m.findActiveByHashFn(ctx, userID, hash)
	}
	return nil, store.ErrNotFound
}

func (m *mockGenerationStore) ClaimPending(context.Context, int64, string) (bool, *model.Generation, error) {
	return false, nil, nil
}

func (m *mockGenerationStore) MarkSucceeded(context.Context, int64, *int) (bool, error) {
	return false, nil
}

func (m *mockGenerationStore) MarkFailed(context.Context, int64, string, string) (bool, error) {
	return false, nil
}

func (m *mockGenerationStore) CancelIfActive(ctx context.Context, id int64, userID uuid.UUID) (bool, *model.Generation, error) {
	if m.cancelIfActiveFn != nil {
		return m.cancelIfActiveFn(ctx, id, userID)
	}
	return false, nil, nil
}

func (m *mockGenerationStore) FailStaleRunning(context.Context, time.Time, string, string) ([]int64, error) {
	return nil, nil
}

type mockCandidateStore struct {
	listByGenerationFn func(ctx context.Context, generationID int64, userID uuid.UUID) ([]model.GenerationCandidate, error)
	getByIDForUserFn   func(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
	getForUpdateFn     func(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
	updateContentFn    func(ctx context.Context, id int64, userID uuid.UUID, front, back, fingerprint string) (*model.GenerationCandidate, error)
	acceptFn           func(ctx context.Context, id int64, flashcardID int64) (*model.GenerationCandidate, error)
	rejectFn           func(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error)
}

func (m *mockCandidateStore) CreateBatch(_ context.Context, candidates []model.GenerationCandidate) (int64, error) {
	return int64(len(candidates)), nil
}

func (m *mockCandidateStore) ListByGeneration(ctx context.Context, generationID int64, userID uuid.UUID) ([]model.GenerationCandidate, error) {
	if m.listByGenerationFn != nil {
		return m.listByGenerationFn(ctx, generationID, userID)
	}
	return nil, nil
}

func (m *mockCandidateStore) GetByIDForUser(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	if m.getByIDForUserFn != nil {
		return m.getByIDForUserFn(ctx, id, userID)
	}
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) GetForUpdate(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, id, userID)
	}
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) UpdateContent(ctx context.Context, id int64, userID uuid.UUID, front, back, fingerprint string) (*model.GenerationCandidate, error) {
	if m.updateContentFn != nil {
		return m.updateContentFn(ctx, id, userID, front, back, fingerprint)
	}
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) Accept(ctx context.Context, id int64, flashcardID int64) (*model.GenerationCandidate, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, id, flashcardID)
	}
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) Reject(ctx context.Context, id int64, userID uuid.UUID) (*model.GenerationCandidate, error) {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, id, userID)
	}
	return nil, store.ErrNotFound
}

type mockFlashcardStore struct {
	createFn  func(ctx context.Context, card *model.Flashcard) (*model.Flashcard, error)
	addTagsFn func(ctx context.Context, flashcardID int64, tagIDs []int64) error

	addTagsCalls int
}

func (m *mockFlashcardStore) Create(ctx context.Context, card *model.Flashcard) (*model.Flashcard, error) {
	if m.createFn != nil {
		return m.createFn(ctx, card)
	}
	return card, nil
}

func (m *mockFlashcardStore) AddTags(ctx context.Context, flashcardID int64, tagIDs []int64) error {
	m.addTagsCalls++
	if m.addTagsFn != nil {
		return m.addTagsFn(ctx, flashcardID, tagIDs)
	}
	return nil
}

type mockStoreProvider struct {
	candidates *mockCandidateStore
	flashcards *mockFlashcardStore
}

func (m *mockStoreProvider) Candidates() store.CandidateStore { return m.candidates }
func (m *mockStoreProvider) Flashcards() store.FlashcardStore { return m.flashcards }

type mockTxRunner struct {
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, job queue.Job) error
	jobs      []queue.Job
}

func (m *mockProducer) Enqueue(ctx context.Context, job queue.Job) error {
	m.jobs = append(m.jobs, job)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, job)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }
