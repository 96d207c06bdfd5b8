package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"flashcards.app/generator/common/llm"
)

const (
	baseURL        = "https://openrouter.test/api/v1"
	completionsURL = baseURL + "/chat/completions"
)

type cardsPayload struct {
	Cards []struct {
		Front  string  `json:"front"`
		Back   string  `json:"back"`
		TagIDs []int64 `json:"tag_ids"`
	} `json:"cards"`
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "gen-123",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "openai/gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 40,
			"total_tokens":      160,
		},
	}
}

type recordingObserver struct {
	kinds []string
}

func (o *recordingObserver) ObserveLLMRequest(_, kind string, _ time.Duration) {
	o.kinds = append(o.kinds, kind)
}

func (o *recordingObserver) ObserveLLMTokens(string, int, int) {}

var _ = Describe("Client", func() {
	var (
		ctx       context.Context
		transport *httpmock.MockTransport
		health    *llm.Health
		observer  *recordingObserver
		client    llm.Client
		req       llm.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = httpmock.NewMockTransport()
		health = llm.NewHealth(llm.HealthConfig{FailureThreshold: 2, Cooldown: time.Hour})
		observer = &recordingObserver{}

		var err error
		client, err = llm.New(llm.Config{
			APIKey:   "sk-or-test",
			BaseURL:  baseURL,
			Model:    "openai/gpt-4o-mini",
			Timeout:  5 * time.Second,
			AppTitle: "Flashcards",
		}, health,
			llm.WithHTTPClient(&http.Client{Transport: transport}),
			llm.WithObserver(observer),
		)
		Expect(err).NotTo(HaveOccurred())

		req = llm.Request{
			SystemPrompt: "system",
			UserPrompt:   "user",
			SchemaName:   "flashcards",
			Schema:       llm.GenerateSchema[cardsPayload](),
			Temperature:  llm.Temp(0.3),
		}
	})

	Describe("New", func() {
		It("returns a config error without an API key", func() {
			_, err := llm.New(llm.Config{}, nil)
			Expect(llm.IsKind(err, llm.ErrorKindConfig)).To(BeTrue())
		})
	})

	Describe("Chat", func() {
		It("sends a schema constrained request and decodes the reply", func() {
			var captured map[string]any
			var authHeader, titleHeader string
			transport.RegisterResponder(http.MethodPost, completionsURL,
				func(r *http.Request) (*http.Response, error) {
					authHeader = r.Header.Get("Authorization")
					titleHeader = r.Header.Get("X-Title")
					Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
					return httpmock.NewJsonResponse(http.StatusOK,
						completionBody(`{"cards":[{"front":"Q","back":"A","tag_ids":[3]}]}`))
				})

			var out cardsPayload
			resp, err := client.Chat(ctx, req, &out)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Cards).To(HaveLen(1))
			Expect(out.Cards[0].Front).To(Equal("Q"))
			Expect(out.Cards[0].TagIDs).To(Equal([]int64{3}))
			Expect(resp.PromptTokens).To(Equal(120))
			Expect(resp.TotalTokens).To(Equal(160))
			Expect(resp.Model).To(Equal("openai/gpt-4o-mini"))

			Expect(authHeader).To(Equal("Bearer sk-or-test"))
			Expect(titleHeader).To(Equal("Flashcards"))
			Expect(captured["model"]).To(Equal("openai/gpt-4o-mini"))
			Expect(captured["temperature"]).To(BeNumerically("~", 0.3, 1e-9))
			format, ok := captured["response_format"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(format["type"]).To(Equal("json_schema"))

			Expect(transport.GetTotalCallCount()).To(Equal(1))
			Expect(health.Snapshot().State).To(Equal(llm.HealthStateClosed))
			Expect(observer.kinds).To(Equal([]string{"ok"}))
		})

		It("uses the per-request model override", func() {
			var captured map[string]any
			transport.RegisterResponder(http.MethodPost, completionsURL,
				func(r *http.Request) (*http.Response, error) {
					Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
					return httpmock.NewJsonResponse(http.StatusOK, completionBody(`{"cards":[]}`))
				})

			req.Model = "anthropic/claude-3.5-haiku"
			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			Expect(err).NotTo(HaveOccurred())
			Expect(captured["model"]).To(Equal("anthropic/claude-3.5-haiku"))
		})

		It("accepts JSON wrapped in a markdown fence", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewJsonResponderOrPanic(http.StatusOK,
					completionBody("```json\n{\"cards\":[{\"front\":\"Q\",\"back\":\"A\",\"tag_ids\":[]}]}\n```")))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Cards).To(HaveLen(1))
		})

		DescribeTable("classifies HTTP failures",
			func(status int, body string, kind llm.ErrorKind) {
				transport.RegisterResponder(http.MethodPost, completionsURL,
					httpmock.NewStringResponder(status, body).HeaderSet(http.Header{"Content-Type": {"application/json"}}))

				var out cardsPayload
				_, err := client.Chat(ctx, req, &out)

				llmErr, ok := llm.AsError(err)
				Expect(ok).To(BeTrue())
				Expect(llmErr.Kind).To(Equal(kind))
				Expect(llmErr.StatusCode).To(Equal(status))
				Expect(transport.GetTotalCallCount()).To(Equal(1))
			},
			Entry("401 is auth", 401, `{"error":{"message":"No auth credentials found"}}`, llm.ErrorKindAuth),
			Entry("400 is bad_request", 400, `{"error":{"message":"invalid model"}}`, llm.ErrorKindBadRequest),
			Entry("429 is rate_limit", 429, `{"error":{"message":"slow down"}}`, llm.ErrorKindRateLimit),
			Entry("500 is server", 500, `{"error":{"message":"boom"}}`, llm.ErrorKindServer),
			Entry("502 is server", 502, `{"error":{"message":"bad gateway"}}`, llm.ErrorKindServer),
			Entry("503 is server", 503, `{"error":{"message":"unavailable"}}`, llm.ErrorKindServer),
			Entry("504 is server", 504, `{"error":{"message":"timeout"}}`, llm.ErrorKindServer),
			Entry("402 is generic upstream", 402, `{"error":{"message":"insufficient credits"}}`, llm.ErrorKindUpstream),
			Entry("404 is generic upstream", 404, `{"error":{"message":"no endpoints"}}`, llm.ErrorKindUpstream),
		)

		It("keeps the provider message on bad requests", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(400, `{"error":{"message":"maximum context length exceeded","type":"invalid_request_error"}}`).
					HeaderSet(http.Header{"Content-Type": {"application/json"}}))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			llmErr, ok := llm.AsError(err)
			Expect(ok).To(BeTrue())
			Expect(llmErr.Details).To(ContainSubstring("maximum context length exceeded"))
		})

		It("reads Retry-After on rate limits", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(429, `{"error":{"message":"rate limited"}}`).
					HeaderSet(http.Header{
						"Content-Type": {"application/json"},
						"Retry-After":  {"7"},
					}))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			llmErr, ok := llm.AsError(err)
			Expect(ok).To(BeTrue())
			Expect(llmErr.Kind).To(Equal(llm.ErrorKindRateLimit))
			Expect(llmErr.RetryAfter).To(Equal(7 * time.Second))
			Expect(llm.Retryable(err)).To(BeTrue())
		})

		It("leaves RetryAfter unset when the header is absent", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(429, `{"error":{"message":"rate limited"}}`).
					HeaderSet(http.Header{"Content-Type": {"application/json"}}))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			llmErr, _ := llm.AsError(err)
			Expect(llmErr.RetryAfter).To(BeZero())
		})

		It("reports transport failures as network errors", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewErrorResponder(errors.New("connection reset by peer")))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			Expect(llm.IsKind(err, llm.ErrorKindNetwork)).To(BeTrue())
			Expect(llm.Retryable(err)).To(BeFalse())
			Expect(transport.GetTotalCallCount()).To(Equal(1))
		})

		It("reports a missing choices array as a parse error", func() {
			body := completionBody("")
			body["choices"] = []any{}
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewJsonResponderOrPanic(http.StatusOK, body))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			Expect(llm.IsKind(err, llm.ErrorKindParse)).To(BeTrue())
		})

		It("maps an error envelope delivered with 200 by its code", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(http.StatusOK, `{"error":{"code":502,"message":"provider returned error"}}`).
					HeaderSet(http.Header{"Content-Type": {"application/json"}}))

			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			llmErr, ok := llm.AsError(err)
			Expect(ok).To(BeTrue())
			Expect(llmErr.Kind).To(Equal(llm.ErrorKindServer))
			Expect(llmErr.StatusCode).To(Equal(502))
			Expect(llmErr.Details).To(Equal("provider returned error"))
		})

		It("carries the raw content when the content is not valid JSON", func() {
			content := `{"cards":[{"front":"Q1","back":"A1","tag_ids":[]},{"front":"Q2","ba`
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewJsonResponderOrPanic(http.StatusOK, completionBody(content)))

			var out cardsPayload
			resp, err := client.Chat(ctx, req, &out)

			llmErr, ok := llm.AsError(err)
			Expect(ok).To(BeTrue())
			Expect(llmErr.Kind).To(Equal(llm.ErrorKindParse))
			Expect(llmErr.RawBody).To(Equal(content))
			Expect(resp).NotTo(BeNil())
			Expect(resp.PromptTokens).To(Equal(120))
			Expect(health.Snapshot().ConsecutiveFailures).To(BeZero())
		})

		It("rejects a request without a schema", func() {
			req.Schema = nil
			var out cardsPayload
			_, err := client.Chat(ctx, req, &out)

			Expect(llm.IsKind(err, llm.ErrorKindConfig)).To(BeTrue())
			Expect(transport.GetTotalCallCount()).To(BeZero())
		})
	})

	Describe("Complete", func() {
		It("returns free text content", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewJsonResponderOrPanic(http.StatusOK, completionBody("plain answer")))

			content, resp, err := client.Complete(ctx, llm.Request{UserPrompt: "hi"})

			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal("plain answer"))
			Expect(resp.CompletionTokens).To(Equal(40))
		})
	})

	Describe("health recording", func() {
		It("opens after consecutive upstream failures", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(503, `{"error":{"message":"down"}}`).
					HeaderSet(http.Header{"Content-Type": {"application/json"}}))

			var out cardsPayload
			_, _ = client.Chat(ctx, req, &out)
			Expect(health.Allow()).To(BeTrue())
			_, _ = client.Chat(ctx, req, &out)

			Expect(health.Allow()).To(BeFalse())
			Expect(health.Snapshot().State).To(Equal(llm.HealthStateOpen))
			Expect(observer.kinds).To(Equal([]string{"server", "server"}))
		})

		It("does not count client-side failures", func() {
			transport.RegisterResponder(http.MethodPost, completionsURL,
				httpmock.NewStringResponder(401, `{"error":{"message":"bad key"}}`).
					HeaderSet(http.Header{"Content-Type": {"application/json"}}))

			var out cardsPayload
			_, _ = client.Chat(ctx, req, &out)
			_, _ = client.Chat(ctx, req, &out)
			_, _ = client.Chat(ctx, req, &out)

			Expect(health.Snapshot().ConsecutiveFailures).To(BeZero())
			Expect(health.Allow()).To(BeTrue())
		})
	})
})
