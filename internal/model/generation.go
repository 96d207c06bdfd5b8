package model

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusRunning   GenerationStatus = "running"
	GenerationStatusSucceeded GenerationStatus = "succeeded"
	GenerationStatusFailed    GenerationStatus = "failed"
	GenerationStatusCancelled GenerationStatus = "cancelled"
)

// Error codes recorded on failed generations.
const (
	ErrorCodeTagFetchFailed = "tag_fetch_failed"
	ErrorCodeNoValidCards   = "no_valid_cards"
	ErrorCodePersistFailed  = "persist_failed"
	ErrorCodeInternal       = "internal_error"
	ErrorCodeStaleRun       = "stale_run"
)

var generationTransitions = map[GenerationStatus][]GenerationStatus{
	GenerationStatusPending: {GenerationStatusRunning, GenerationStatusCancelled},
	GenerationStatusRunning: {GenerationStatusSucceeded, GenerationStatusFailed, GenerationStatusCancelled},
}

// CanTransition reports whether a generation may move from one status to another.
// Statuses only move forward; terminal statuses have no exits.
func CanTransition(from, to GenerationStatus) bool {
	for _, next := range generationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the generation can still be cancelled.
func (s GenerationStatus) IsActive() bool {
	return s == GenerationStatusPending || s == GenerationStatusRunning
}

func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationStatusSucceeded || s == GenerationStatusFailed || s == GenerationStatusCancelled
}

func (s GenerationStatus) Valid() bool {
	switch s {
	case GenerationStatusPending, GenerationStatusRunning, GenerationStatusSucceeded,
		GenerationStatusFailed, GenerationStatusCancelled:
		return true
	}
	return false
}

// Generation is one request to turn a source text into flashcard candidates.
type Generation struct {
	ID               int64            `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Model            string           `json:"model"`
	Status           GenerationStatus `json:"status"`
	SourceText       string           `json:"-"`
	SourceTextLength int              `json:"source_text_length"`
	SourceTextHash   string           `json:"source_text_hash"`
	Temperature      *float64         `json:"temperature,omitempty"`
	PromptTokens     *int             `json:"prompt_tokens,omitempty"`
	PromptVersion    *string          `json:"prompt_version,omitempty"`
	ErrorCode        *string          `json:"error_code,omitempty"`
	ErrorMessage     *string          `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	StartedAt        *time.Time       `json:"started_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}
