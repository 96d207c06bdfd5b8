package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"flashcards.app/generator/common/id"
	"flashcards.app/generator/common/llm"
	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/common/metrics"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/store"
)

const (
	msgNoValidCards = "No valid flashcards were generated"
	msgCancelled    = "generation was cancelled"

	failTimeout = 10 * time.Second

	defaultTemperature = 0.3
)

var errGenerationCancelled = errors.New(msgCancelled)

type Config struct {
	DefaultTemperature *float64      // nil = 0.3; an explicit 0 is kept
	MaxTokens          int           // 0 = client default
	RateLimitBackoff   time.Duration // wait before the rate-limit retry when no Retry-After is sent
	MaxRetryAfter      time.Duration // cap on a provider-requested wait
	Concurrency        int           // batch pool size
}

func (c Config) withDefaults() Config {
	if c.DefaultTemperature == nil {
		c.DefaultTemperature = llm.Temp(defaultTemperature)
	}
	if c.RateLimitBackoff <= 0 {
		c.RateLimitBackoff = 2 * time.Second
	}
	if c.MaxRetryAfter <= 0 {
		c.MaxRetryAfter = 30 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Result is the outcome of one ProcessGeneration call. Skipped means the
// generation was not ours to finish: already claimed, or cancelled meanwhile.
type Result struct {
	GenerationID      int64  `json:"generation_id,string"`
	Success           bool   `json:"success"`
	Skipped           bool   `json:"skipped,omitempty"`
	CandidatesCreated int    `json:"candidates_created"`
	Error             string `json:"error,omitempty"`
	ErrorCode         string `json:"error_code,omitempty"`
}

func (r Result) outcome() string {
	switch {
	case r.Success:
		return metrics.OutcomeSucceeded
	case r.Skipped:
		return metrics.OutcomeSkipped
	default:
		return metrics.OutcomeFailed
	}
}

// cardsResponse is the structured output requested from the model.
type cardsResponse struct {
	Cards []cardOutput `json:"cards" jsonschema:"description=Flashcards generated from the source text"`
}

type cardOutput struct {
	Front  string  `json:"front" jsonschema:"description=Question or prompt, at most 200 characters"`
	Back   string  `json:"back" jsonschema:"description=Answer, at most 450 characters"`
	TagIDs []int64 `json:"tag_ids" jsonschema:"description=Ids from the available tag list, may be empty"`
}

var cardsSchema = llm.GenerateSchema[cardsResponse]()

// rawCards decodes the same document loosely so every card goes through ValidateFlashcard.
type rawCards struct {
	Cards []any `json:"cards"`
}

// Processor runs a single generation from pending to a terminal status.
type Processor struct {
	generations store.GenerationStore
	tags        store.TagStore
	txRunner    TxRunner
	llm         llm.Client
	metrics     *metrics.Metrics
	cfg         Config
}

func NewProcessor(
	generations store.GenerationStore,
	tags store.TagStore,
	txRunner TxRunner,
	client llm.Client,
	m *metrics.Metrics,
	cfg Config,
) *Processor {
	return &Processor{
		generations: generations,
		tags:        tags,
		txRunner:    txRunner,
		llm:         client,
		metrics:     m,
		cfg:         cfg.withDefaults(),
	}
}

// ProcessGeneration never returns an error and never panics: every failure
// after the claim ends as a failed generation and an unsuccessful Result.
func (p *Processor) ProcessGeneration(ctx context.Context, gen *model.Generation) (result Result) {
	start := time.Now()
	result = Result{GenerationID: gen.ID}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GenerationID: &gen.ID,
		UserID:       logger.Ptr(gen.UserID.String()),
		Component:    "generator.processor",
	})
	span := logger.StartSpan(ctx, "generation.process")
	ctx = span.Context()
	span.SetAttributes(attribute.Int64("generation.id", gen.ID))

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic while processing generation",
				"panic", r,
				"stack", string(debug.Stack()))
			result = p.fail(ctx, gen.ID, model.ErrorCodeInternal, fmt.Sprintf("internal error: %v", r))
		}
		if !result.Success && result.Error != "" {
			span.RecordError(errors.New(result.Error))
		}
		span.SetAttributes(
			attribute.String("generation.outcome", result.outcome()),
			attribute.Int("generation.candidates", result.CandidatesCreated),
		)
		span.End()
		p.metrics.RecordGeneration(result.outcome(), result.ErrorCode, result.CandidatesCreated, time.Since(start))
	}()

	claimed, current, err := p.generations.ClaimPending(ctx, gen.ID, PromptVersion)
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim generation", "error", err)
		result.Error = fmt.Sprintf("failed to claim generation: %v", err)
		result.ErrorCode = model.ErrorCodeInternal
		return result
	}
	if !claimed {
		slog.DebugContext(ctx, "generation not pending, skipping")
		result.Skipped = true
		result.Error = "generation is not pending"
		return result
	}
	gen = current

	slog.InfoContext(ctx, "generation claimed",
		"model", gen.Model,
		"source_length", gen.SourceTextLength)

	tags, err := p.tags.ListAvailable(ctx, gen.UserID)
	if err != nil {
		return p.fail(ctx, gen.ID, model.ErrorCodeTagFetchFailed, fmt.Sprintf("failed to fetch available tags: %v", err))
	}

	proposed, resp, err := p.complete(ctx, gen, tags)
	if err != nil {
		code := model.ErrorCodeInternal
		if llmErr, ok := llm.AsError(err); ok {
			code = string(llmErr.Kind)
		}
		return p.fail(ctx, gen.ID, code, err.Error())
	}

	cards := filterCards(proposed, tags)
	slog.InfoContext(ctx, "cards validated",
		"proposed", len(proposed),
		"valid", len(cards))
	if len(cards) == 0 {
		return p.fail(ctx, gen.ID, model.ErrorCodeNoValidCards, msgNoValidCards)
	}

	created, err := p.persist(ctx, gen, cards, resp)
	if errors.Is(err, errGenerationCancelled) {
		slog.InfoContext(ctx, "generation cancelled during processing, discarding cards")
		result.Skipped = true
		result.Error = msgCancelled
		return result
	}
	if err != nil {
		return p.fail(ctx, gen.ID, model.ErrorCodePersistFailed, fmt.Sprintf("failed to save candidates: %v", err))
	}

	slog.InfoContext(ctx, "generation succeeded",
		"candidates_created", created,
		"duration_ms", time.Since(start).Milliseconds())

	result.Success = true
	result.CandidatesCreated = created
	return result
}

// complete asks the model for cards. A rate-limited call is retried once;
// an unparseable response goes through Repair before it counts as a failure.
func (p *Processor) complete(ctx context.Context, gen *model.Generation, tags []model.Tag) ([]any, *llm.Response, error) {
	temperature := *p.cfg.DefaultTemperature
	if gen.Temperature != nil {
		temperature = *gen.Temperature
	}

	req := llm.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   BuildPrompt(gen.SourceText, tags),
		SchemaName:   "flashcards",
		Schema:       cardsSchema,
		Model:        gen.Model,
		MaxTokens:    p.cfg.MaxTokens,
		Temperature:  llm.Temp(temperature),
		Metadata: map[string]string{
			"generation_id": strconv.FormatInt(gen.ID, 10),
		},
	}

	var (
		out  rawCards
		resp *llm.Response
	)
	wait := &rateLimitBackOff{fallback: p.cfg.RateLimitBackoff, max: p.cfg.MaxRetryAfter}
	operation := func() error {
		out = rawCards{}
		r, err := p.llm.Chat(ctx, req, &out)
		resp = r
		if err == nil {
			return nil
		}
		if llmErr, ok := llm.AsError(err); ok && llm.Retryable(err) {
			wait.retryAfter = llmErr.RetryAfter
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, d time.Duration) {
		slog.WarnContext(ctx, "rate limited by completion provider, retrying once",
			"wait_ms", d.Milliseconds(),
			"error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(wait, 1), ctx)
	err := backoff.RetryNotify(operation, policy, notify)
	if err == nil {
		return out.Cards, resp, nil
	}

	llmErr, ok := llm.AsError(err)
	if !ok || llmErr.Kind != llm.ErrorKindParse {
		return nil, nil, err
	}

	repaired, ok := Repair(llmErr.RawBody)
	if !ok {
		slog.WarnContext(ctx, "could not repair completion response",
			"raw_length", len(llmErr.RawBody),
			"raw_preview", logger.Truncate(llmErr.RawBody, 200))
		return nil, nil, err
	}

	p.metrics.RecordRepair(string(repaired.Stage))
	slog.InfoContext(ctx, "repaired malformed completion response",
		"stage", repaired.Stage,
		"cards", len(repaired.Cards))
	return repaired.Cards, resp, nil
}

// persist flips the generation to succeeded and inserts its candidates in one
// transaction. The status update goes first so a concurrent cancel leaves no
// orphaned candidates behind.
func (p *Processor) persist(ctx context.Context, gen *model.Generation, cards []ValidatedFlashcard, resp *llm.Response) (int, error) {
	var promptTokens *int
	if resp != nil && resp.PromptTokens > 0 {
		promptTokens = logger.Ptr(resp.PromptTokens)
	}

	candidates := make([]model.GenerationCandidate, 0, len(cards))
	for _, card := range cards {
		candidates = append(candidates, model.GenerationCandidate{
			ID:                   id.New(),
			GenerationID:         gen.ID,
			UserID:               gen.UserID,
			Front:                card.Front,
			Back:                 card.Back,
			FrontBackFingerprint: card.Fingerprint(),
			Status:               model.CandidateStatusProposed,
			SuggestedTagIDs:      card.TagIDs,
		})
	}

	var created int
	err := p.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		ok, err := stores.Generations().MarkSucceeded(ctx, gen.ID, promptTokens)
		if err != nil {
			return fmt.Errorf("marking generation succeeded: %w", err)
		}
		if !ok {
			return errGenerationCancelled
		}

		n, err := stores.Candidates().CreateBatch(ctx, candidates)
		if err != nil {
			return fmt.Errorf("inserting candidates: %w", err)
		}
		created = int(n)
		return nil
	})
	return created, err
}

// fail moves a running generation to failed. The write uses a context detached
// from the caller so a cancelled request still records the outcome.
func (p *Processor) fail(ctx context.Context, generationID int64, code, message string) Result {
	result := Result{
		GenerationID: generationID,
		Error:        message,
		ErrorCode:    code,
	}

	slog.WarnContext(ctx, "generation failed",
		"error_code", code,
		"error", message)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failTimeout)
	defer cancel()

	updated, err := p.generations.MarkFailed(writeCtx, generationID, code, message)
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark generation failed",
			"error_code", code,
			"error", err)
		return result
	}
	if !updated {
		slog.InfoContext(ctx, "generation no longer running, failure not recorded",
			"error_code", code)
		result.Skipped = true
	}
	return result
}

// filterCards validates proposed cards, keeps only catalog tag ids and drops
// cards whose content repeats an earlier card.
func filterCards(raw []any, tags []model.Tag) []ValidatedFlashcard {
	known := make(map[int64]struct{}, len(tags))
	for _, t := range tags {
		known[t.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(raw))
	cards := make([]ValidatedFlashcard, 0, len(raw))
	for _, item := range raw {
		card := ValidateFlashcard(item)
		if card == nil {
			continue
		}

		fp := card.Fingerprint()
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		tagIDs := make([]int64, 0, len(card.TagIDs))
		for _, tagID := range card.TagIDs {
			if _, ok := known[tagID]; ok {
				tagIDs = append(tagIDs, tagID)
			}
		}
		card.TagIDs = tagIDs

		cards = append(cards, *card)
	}
	return cards
}

// rateLimitBackOff waits for the provider's Retry-After when it sent one,
// capped at max, and otherwise for the configured fallback.
type rateLimitBackOff struct {
	fallback   time.Duration
	max        time.Duration
	retryAfter time.Duration
}

func (b *rateLimitBackOff) NextBackOff() time.Duration {
	wait := b.fallback
	if b.retryAfter > 0 {
		wait = b.retryAfter
	}
	if b.max > 0 && wait > b.max {
		wait = b.max
	}
	return wait
}

func (b *rateLimitBackOff) Reset() {
	b.retryAfter = 0
}
