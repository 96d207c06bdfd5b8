package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
)

// Client performs chat completions against an OpenAI-compatible endpoint.
// Every call makes exactly one outbound HTTP request; retries are the caller's decision.
type Client interface {
	// Chat requests a JSON response constrained by req.Schema and decodes it into result.
	Chat(ctx context.Context, req Request, result any) (*Response, error)
	// Complete requests a free-text response.
	Complete(ctx context.Context, req Request) (string, *Response, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	Model        string // empty = client default
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
	Metadata     map[string]string
}

type Response struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	AppURL    string
	AppTitle  string
}

// Observer receives per-call measurements. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveLLMRequest(model, kind string, duration time.Duration)
	ObserveLLMTokens(model string, prompt, completion int)
}

type Option func(*client)

// WithHTTPClient replaces the transport used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

func WithObserver(o Observer) Option {
	return func(c *client) {
		c.observer = o
	}
}

// GenerateSchema reflects a strict JSON schema for T, suitable for structured outputs.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}
