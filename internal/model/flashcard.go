package model

import (
	"time"

	"github.com/google/uuid"
)

type FlashcardOrigin string

const (
	FlashcardOriginManual   FlashcardOrigin = "manual"
	FlashcardOriginAIFull   FlashcardOrigin = "ai-full"
	FlashcardOriginAIEdited FlashcardOrigin = "ai-edited"
)

type Flashcard struct {
	ID                   int64           `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	Front                string          `json:"front"`
	Back                 string          `json:"back"`
	Origin               FlashcardOrigin `json:"origin"`
	FrontBackFingerprint string          `json:"front_back_fingerprint"`
	GenerationID         *int64          `json:"generation_id,omitempty"`
	TagIDs               []int64         `json:"tag_ids"`
	CreatedAt            time.Time       `json:"created_at"`
}
