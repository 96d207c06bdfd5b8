package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
)

// ErrorKind classifies completion failures.
type ErrorKind string

const (
	ErrorKindConfig     ErrorKind = "config"
	ErrorKindAuth       ErrorKind = "auth"
	ErrorKindBadRequest ErrorKind = "bad_request"
	ErrorKindRateLimit  ErrorKind = "rate_limit"
	ErrorKindServer     ErrorKind = "server"
	ErrorKindUpstream   ErrorKind = "upstream"
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindParse      ErrorKind = "parse"
)

// Error is the typed failure returned by Client implementations.
type Error struct {
	Kind       ErrorKind
	StatusCode int           // HTTP status, 0 when no response was received
	RetryAfter time.Duration // rate_limit only, 0 when the provider sent none
	Details    string        // provider message
	RawBody    string        // parse only: the content that failed to decode
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("llm ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr, true
	}
	return nil, false
}

func IsKind(err error, kind ErrorKind) bool {
	llmErr, ok := AsError(err)
	return ok && llmErr.Kind == kind
}

// Retryable reports whether a caller may repeat the request. Only rate limiting
// qualifies; server and network failures are surfaced immediately.
func Retryable(err error) bool {
	return IsKind(err, ErrorKindRateLimit)
}

// upstreamFailure reports whether the failure says something about the provider's health.
func (k ErrorKind) upstreamFailure() bool {
	switch k {
	case ErrorKindServer, ErrorKindNetwork, ErrorKindRateLimit, ErrorKindUpstream:
		return true
	}
	return false
}

// classify maps a transport or SDK error onto the ErrorKind taxonomy.
func classify(err error) *Error {
	if llmErr, ok := AsError(err); ok {
		return llmErr
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.StatusCode, providerMessage(apiErr), retryAfterHeader(apiErr.Response), err)
	}

	return &Error{Kind: ErrorKindNetwork, Err: err}
}

func fromStatus(status int, details string, retryAfter time.Duration, err error) *Error {
	e := &Error{StatusCode: status, Details: details, Err: err}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = ErrorKindAuth
	case status == http.StatusBadRequest:
		e.Kind = ErrorKindBadRequest
	case status == http.StatusTooManyRequests:
		e.Kind = ErrorKindRateLimit
		e.RetryAfter = retryAfter
	case status == http.StatusInternalServerError, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		e.Kind = ErrorKindServer
	default:
		e.Kind = ErrorKindUpstream
	}
	return e
}

// providerMessage prefers the SDK-parsed message and falls back to the
// {"error":{"message":...}} envelope OpenRouter uses.
func providerMessage(apiErr *openai.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := envelopeMessage([]byte(apiErr.RawJSON())); msg != "" {
		return msg
	}
	return http.StatusText(apiErr.StatusCode)
}

type errorEnvelope struct {
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func envelopeMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return env.Message
}

// embeddedError detects an error envelope delivered with a 2xx status,
// which OpenRouter sends when the routed provider fails mid-request.
func embeddedError(raw []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == nil {
		return nil
	}
	status, _ := strconv.Atoi(strings.Trim(string(env.Error.Code), `"`))
	if status == 0 {
		status = http.StatusBadGateway
	}
	return fromStatus(status, env.Error.Message, 0, nil)
}

// retryAfterHeader reads a Retry-After header given in seconds or as an HTTP date.
func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	if secs, err := strconv.Atoi(ra); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(ra); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func parseError(raw string, err error) *Error {
	return &Error{Kind: ErrorKindParse, RawBody: raw, Err: err}
}

func isCallerCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
