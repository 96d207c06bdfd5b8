package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"flashcards.app/generator/common/logger"
)

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second
)

type client struct {
	openai     openai.Client
	model      string
	maxTokens  int
	timeout    time.Duration
	health     *Health
	observer   Observer
	httpClient *http.Client
}

// New builds a Client for OpenRouter (or any OpenAI-compatible endpoint).
// health may be nil; when set, every call outcome is recorded on it.
func New(cfg Config, health *Health, opts ...Option) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Kind: ErrorKindConfig, Details: "API key is required"}
	}

	c := &client{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		health:    health,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.model == "" {
		c.model = "openai/gpt-4o-mini"
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.AppURL != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", cfg.AppURL))
	}
	if cfg.AppTitle != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", cfg.AppTitle))
	}
	if c.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(c.httpClient))
	}

	c.openai = openai.NewClient(reqOpts...)
	return c, nil
}

func (c *client) Chat(ctx context.Context, req Request, result any) (*Response, error) {
	if req.Schema == nil {
		return nil, &Error{Kind: ErrorKindConfig, Details: "schema is required for structured chat"}
	}

	params := c.params(req)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        req.SchemaName,
				Description: openai.String("Structured response schema"),
				Schema:      req.Schema,
				Strict:      openai.Bool(true),
			},
		},
	}

	content, resp, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stripCodeFence(content)), result); err != nil {
		slog.WarnContext(ctx, "llm returned malformed structured content",
			"model", resp.Model,
			"content_length", len(content),
			"content_preview", logger.Truncate(content, 200),
			"error", err)
		return resp, parseError(content, fmt.Errorf("unmarshal response: %w", err))
	}

	return resp, nil
}

func (c *client) Complete(ctx context.Context, req Request) (string, *Response, error) {
	content, resp, err := c.do(ctx, c.params(req))
	if err != nil {
		return "", nil, err
	}
	return content, resp, nil
}

func (c *client) Model() string {
	return c.model
}

func (c *client) params(req Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = req.Metadata
	}
	return params
}

// do performs the single outbound call and returns the first choice's content.
func (c *client) do(ctx context.Context, params openai.ChatCompletionNewParams) (string, *Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := params.Model
	start := time.Now()

	var raw []byte
	_, err := c.openai.Chat.Completions.New(ctx, params, option.WithResponseBodyInto(&raw))
	duration := time.Since(start)
	if err != nil {
		llmErr := classify(err)
		c.record(ctx, model, llmErr, duration)
		slog.WarnContext(ctx, "llm request failed",
			"model", model,
			"kind", llmErr.Kind,
			"status_code", llmErr.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", nil, llmErr
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(raw, &completion); err != nil {
		llmErr := parseError(string(raw), fmt.Errorf("decode completion: %w", err))
		c.record(ctx, model, llmErr, duration)
		return "", nil, llmErr
	}

	if len(completion.Choices) == 0 {
		llmErr := embeddedError(raw)
		if llmErr == nil {
			llmErr = parseError(string(raw), errors.New("no choices in response"))
		}
		c.record(ctx, model, llmErr, duration)
		return "", nil, llmErr
	}

	resp := &Response{
		Model:            completion.Model,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}
	if resp.Model == "" {
		resp.Model = model
	}

	choice := completion.Choices[0]
	content := choice.Message.Content
	if strings.TrimSpace(content) == "" {
		llmErr := parseError(content, fmt.Errorf("empty content (finish_reason=%s)", choice.FinishReason))
		c.record(ctx, model, llmErr, duration)
		return "", nil, llmErr
	}

	c.record(ctx, model, nil, duration)
	if c.observer != nil {
		c.observer.ObserveLLMTokens(resp.Model, resp.PromptTokens, resp.CompletionTokens)
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", resp.Model,
		"duration_ms", duration.Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"finish_reason", choice.FinishReason)

	return content, resp, nil
}

// record updates health and metrics for one call. A caller cancelling its own
// context says nothing about the provider and is not counted as a failure.
func (c *client) record(ctx context.Context, model string, llmErr *Error, duration time.Duration) {
	if llmErr == nil {
		c.health.RecordSuccess()
		c.observe(model, "", duration)
		return
	}

	c.observe(model, llmErr.Kind, duration)
	if isCallerCancel(llmErr) && ctx.Err() != nil {
		return
	}
	if llmErr.Kind.upstreamFailure() {
		c.health.RecordFailure(llmErr)
	}
}

func (c *client) observe(model string, kind ErrorKind, duration time.Duration) {
	if c.observer == nil {
		return
	}
	label := string(kind)
	if kind == "" {
		label = "ok"
	}
	c.observer.ObserveLLMRequest(model, label, duration)
}

// stripCodeFence removes a ```json ... ``` wrapper some models put around JSON output.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
