package model

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	CandidateStatusProposed CandidateStatus = "proposed"
	CandidateStatusEdited   CandidateStatus = "edited"
	CandidateStatusAccepted CandidateStatus = "accepted"
	CandidateStatusRejected CandidateStatus = "rejected"
)

// IsReviewable reports whether the candidate still awaits a decision.
func (s CandidateStatus) IsReviewable() bool {
	return s == CandidateStatusProposed || s == CandidateStatusEdited
}

// GenerationCandidate is a proposed flashcard awaiting user review.
type GenerationCandidate struct {
	ID                   int64           `json:"id"`
	GenerationID         int64           `json:"generation_id"`
	UserID               uuid.UUID       `json:"user_id"`
	Front                string          `json:"front"`
	Back                 string          `json:"back"`
	FrontBackFingerprint string          `json:"front_back_fingerprint"`
	Status               CandidateStatus `json:"status"`
	AcceptedFlashcardID  *int64          `json:"accepted_flashcard_id,omitempty"`
	SuggestedCategoryID  *int64          `json:"suggested_category_id,omitempty"`
	SuggestedTagIDs      []int64         `json:"suggested_tag_ids"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
