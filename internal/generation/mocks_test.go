package generation_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"flashcards.app/generator/common/llm"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/store"
)

// mockGenerationStore keeps statuses in memory and applies the same guarded
// transitions as the SQL queries.
type mockGenerationStore struct {
	mu          sync.Mutex
	generations map[int64]*model.Generation

	listPendingFn   func(ctx context.Context) ([]model.Generation, error)
	claimErr        error
	markFailedErr   error
	failedCodes     map[int64]string
	failedMessages  map[int64]string
	succeededTokens map[int64]*int
}

func newMockGenerationStore(gens ...*model.Generation) *mockGenerationStore {
	m := &mockGenerationStore{
		generations:     map[int64]*model.Generation{},
		failedCodes:     map[int64]string{},
		failedMessages:  map[int64]string{},
		succeededTokens: map[int64]*int{},
	}
	for _, g := range gens {
		m.generations[g.ID] = g
	}
	return m
}

func (m *mockGenerationStore) status(id int64) model.GenerationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[id].Status
}

func (m *mockGenerationStore) setStatus(id int64, status model.GenerationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[id].Status = status
}

func (m *mockGenerationStore) Create(_ context.Context, gen *model.Generation) (*model.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[gen.ID] = gen
	return gen, nil
}

func (m *mockGenerationStore) GetByID(_ context.Context, id int64) (*model.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockGenerationStore) GetByIDForUser(ctx context.Context, id int64, _ uuid.UUID) (*model.Generation, error) {
	return m.GetByID(ctx, id)
}

func (m *mockGenerationStore) ListPending(ctx context.Context) ([]model.Generation, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Generation
	for _, g := range m.generations {
		if g.Status == model.GenerationStatusPending {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockGenerationStore) ListByUser(context.Context, uuid.UUID, int32) ([]model.Generation, error) {
	return nil, nil
}

func (m *mockGenerationStore) FindActiveByHash(context.Context, uuid.UUID, string) (*model.Generation, error) {
	return nil, store.ErrNotFound
}

func (m *mockGenerationStore) ClaimPending(_ context.Context, id int64, promptVersion string) (bool, *model.Generation, error) {
	if m.claimErr != nil {
		return false, nil, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[id]
	if !ok || g.Status != model.GenerationStatusPending {
		return false, nil, nil
	}
	g.Status = model.GenerationStatusRunning
	g.PromptVersion = &promptVersion
	now := time.Now()
	g.StartedAt = &now
	cp := *g
	return true, &cp, nil
}

func (m *mockGenerationStore) MarkSucceeded(_ context.Context, id int64, promptTokens *int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.generations[id]
	if g.Status != model.GenerationStatusRunning {
		return false, nil
	}
	g.Status = model.GenerationStatusSucceeded
	m.succeededTokens[id] = promptTokens
	return true, nil
}

func (m *mockGenerationStore) MarkFailed(_ context.Context, id int64, code, message string) (bool, error) {
	if m.markFailedErr != nil {
		return false, m.markFailedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.generations[id]
	if g == nil || g.Status != model.GenerationStatusRunning {
		return false, nil
	}
	g.Status = model.GenerationStatusFailed
	g.ErrorCode = &code
	g.ErrorMessage = &message
	m.failedCodes[id] = code
	m.failedMessages[id] = message
	return true, nil
}

func (m *mockGenerationStore) CancelIfActive(_ context.Context, id int64, _ uuid.UUID) (bool, *model.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.generations[id]
	if g == nil || !g.Status.IsActive() {
		return false, nil, nil
	}
	g.Status = model.GenerationStatusCancelled
	cp := *g
	return true, &cp, nil
}

func (m *mockGenerationStore) FailStaleRunning(context.Context, time.Time, string, string) ([]int64, error) {
	return nil, nil
}

type mockCandidateStore struct {
	mu           sync.Mutex
	createErr    error
	created      []model.GenerationCandidate
	createCalls  int
	beforeCreate func()
}

func (m *mockCandidateStore) CreateBatch(_ context.Context, candidates []model.GenerationCandidate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = append(m.created, candidates...)
	return int64(len(candidates)), nil
}

func (m *mockCandidateStore) ListByGeneration(context.Context, int64, uuid.UUID) ([]model.GenerationCandidate, error) {
	return nil, nil
}

func (m *mockCandidateStore) GetByIDForUser(context.Context, int64, uuid.UUID) (*model.GenerationCandidate, error) {
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) GetForUpdate(context.Context, int64, uuid.UUID) (*model.GenerationCandidate, error) {
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) UpdateContent(context.Context, int64, uuid.UUID, string, string, string) (*model.GenerationCandidate, error) {
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) Accept(context.Context, int64, int64) (*model.GenerationCandidate, error) {
	return nil, store.ErrNotFound
}

func (m *mockCandidateStore) Reject(context.Context, int64, uuid.UUID) (*model.GenerationCandidate, error) {
	return nil, store.ErrNotFound
}

type mockTagStore struct {
	tags  []model.Tag
	err   error
	calls atomic.Int32
}

func (m *mockTagStore) ListAvailable(context.Context, uuid.UUID) ([]model.Tag, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.tags, nil
}

type mockStoreProvider struct {
	generations store.GenerationStore
	candidates  store.CandidateStore
}

func (m *mockStoreProvider) Generations() store.GenerationStore { return m.generations }
func (m *mockStoreProvider) Candidates() store.CandidateStore   { return m.candidates }

// mockTxRunner runs fn against the in-memory stores. It does not roll back;
// tests that need rollback behaviour assert on what fn attempted.
type mockTxRunner struct {
	stores *mockStoreProvider
	calls  atomic.Int32
}

func (m *mockTxRunner) WithTx(_ context.Context, fn func(stores generation.StoreProvider) error) error {
	m.calls.Add(1)
	return fn(m.stores)
}

// mockLLMClient answers Chat with chatFn and counts calls.
type mockLLMClient struct {
	mu       sync.Mutex
	chatFn   func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	requests []llm.Request
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.chatFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req, result)
	}
	return respondWith(`{"cards":[]}`)(ctx, req, result)
}

func (m *mockLLMClient) Complete(context.Context, llm.Request) (string, *llm.Response, error) {
	return "", nil, nil
}

func (m *mockLLMClient) Model() string { return "openai/gpt-4o-mini" }

func (m *mockLLMClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// respondWith decodes content into the caller's result the way the real client
// does, returning a parse error carrying the raw content when it does not decode.
func respondWith(content string) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		resp := &llm.Response{Model: "openai/gpt-4o-mini", PromptTokens: 321, CompletionTokens: 88, TotalTokens: 409}
		if err := json.Unmarshal([]byte(content), result); err != nil {
			return resp, &llm.Error{Kind: llm.ErrorKindParse, RawBody: content, Err: err}
		}
		return resp, nil
	}
}
