package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"flashcards.app/generator/common/id"
	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxTemperature   = 2.0
)

type GenerationConfig struct {
	MinSourceLength int
	MaxSourceLength int
	DefaultModel    string
}

type CreateGenerationInput struct {
	SourceText  string
	Model       string
	Temperature *float64
}

type GenerationService interface {
	// Create stores a pending generation and publishes its job. When the user
	// already has an active generation for the same text, that one is returned
	// with created=false.
	Create(ctx context.Context, userID uuid.UUID, input CreateGenerationInput) (gen *model.Generation, created bool, err error)
	Get(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]model.Generation, error)
	Cancel(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error)
	ListCandidates(ctx context.Context, id int64, userID uuid.UUID) ([]model.GenerationCandidate, error)
}

type generationService struct {
	generations store.GenerationStore
	candidates  store.CandidateStore
	producer    queue.Producer
	cfg         GenerationConfig
}

func NewGenerationService(generations store.GenerationStore, candidates store.CandidateStore, producer queue.Producer, cfg GenerationConfig) GenerationService {
	return &generationService{
		generations: generations,
		candidates:  candidates,
		producer:    producer,
		cfg:         cfg,
	}
}

func (s *generationService) Create(ctx context.Context, userID uuid.UUID, input CreateGenerationInput) (*model.Generation, bool, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(userID.String()),
		Component: "generator.service.generation",
	})

	text := generation.Sanitize(input.SourceText)
	length := utf8.RuneCountInString(text)
	if length < s.cfg.MinSourceLength || length > s.cfg.MaxSourceLength {
		return nil, false, invalid("source_text", "must be between %d and %d characters after cleanup, got %d",
			s.cfg.MinSourceLength, s.cfg.MaxSourceLength, length)
	}
	if t := input.Temperature; t != nil && (math.IsNaN(*t) || *t < 0 || *t > maxTemperature) {
		return nil, false, invalid("temperature", "must be between 0 and %.1f", maxTemperature)
	}

	modelName := strings.TrimSpace(input.Model)
	if modelName == "" {
		modelName = s.cfg.DefaultModel
	}

	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])

	existing, err := s.generations.FindActiveByHash(ctx, userID, hash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("checking for active generation: %w", err)
	}
	if existing != nil {
		slog.InfoContext(ctx, "returning active generation for identical source text",
			"generation_id", existing.ID)
		return existing, false, nil
	}

	gen, err := s.generations.Create(ctx, &model.Generation{
		ID:               id.New(),
		UserID:           userID,
		Model:            modelName,
		Status:           model.GenerationStatusPending,
		SourceText:       text,
		SourceTextLength: length,
		SourceTextHash:   hash,
		Temperature:      input.Temperature,
	})
	if err != nil {
		return nil, false, fmt.Errorf("creating generation: %w", err)
	}

	job := queue.Job{
		TaskType:     queue.TaskTypeGeneration,
		GenerationID: gen.ID,
		UserID:       userID.String(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		job.TraceID = logger.Ptr(sc.TraceID().String())
	}
	// The row is already pending; the sweeper picks it up if the job is lost.
	if err := s.producer.Enqueue(ctx, job); err != nil {
		slog.WarnContext(ctx, "failed to enqueue generation job",
			"generation_id", gen.ID,
			"error", err)
	}

	return gen, true, nil
}

func (s *generationService) Get(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error) {
	return s.generations.GetByIDForUser(ctx, id, userID)
}

func (s *generationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]model.Generation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.generations.ListByUser(ctx, userID, int32(limit))
}

func (s *generationService) Cancel(ctx context.Context, id int64, userID uuid.UUID) (*model.Generation, error) {
	cancelled, gen, err := s.generations.CancelIfActive(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("cancelling generation: %w", err)
	}
	if cancelled {
		return gen, nil
	}

	// Distinguish a missing generation from one that already finished.
	current, err := s.generations.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("generation is %s: %w", current.Status, ErrInvalidTransition)
}

func (s *generationService) ListCandidates(ctx context.Context, id int64, userID uuid.UUID) ([]model.GenerationCandidate, error) {
	if _, err := s.generations.GetByIDForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	candidates, err := s.candidates.ListByGeneration(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return candidates, nil
}
