package dto

import (
	"time"

	"flashcards.app/generator/internal/model"
)

type EditCandidateRequest struct {
	Front string `json:"front" binding:"required"`
	Back  string `json:"back" binding:"required"`
}

type CandidateResponse struct {
	ID                  int64                 `json:"id,string"`
	GenerationID        int64                 `json:"generation_id,string"`
	Front               string                `json:"front"`
	Back                string                `json:"back"`
	Status              model.CandidateStatus `json:"status"`
	AcceptedFlashcardID *int64                `json:"accepted_flashcard_id,string,omitempty"`
	SuggestedTagIDs     []int64               `json:"suggested_tag_ids"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

func ToCandidateResponse(c *model.GenerationCandidate) *CandidateResponse {
	tags := c.SuggestedTagIDs
	if tags == nil {
		tags = []int64{}
	}
	return &CandidateResponse{
		ID:                  c.ID,
		GenerationID:        c.GenerationID,
		Front:               c.Front,
		Back:                c.Back,
		Status:              c.Status,
		AcceptedFlashcardID: c.AcceptedFlashcardID,
		SuggestedTagIDs:     tags,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

type ListCandidatesResponse struct {
	Candidates []*CandidateResponse `json:"candidates"`
}

func ToListCandidatesResponse(candidates []model.GenerationCandidate) *ListCandidatesResponse {
	resp := &ListCandidatesResponse{Candidates: make([]*CandidateResponse, 0, len(candidates))}
	for i := range candidates {
		resp.Candidates = append(resp.Candidates, ToCandidateResponse(&candidates[i]))
	}
	return resp
}

type FlashcardResponse struct {
	ID           int64                 `json:"id,string"`
	Front        string                `json:"front"`
	Back         string                `json:"back"`
	Origin       model.FlashcardOrigin `json:"origin"`
	GenerationID *int64                `json:"generation_id,string,omitempty"`
	TagIDs       []int64               `json:"tag_ids"`
	CreatedAt    time.Time             `json:"created_at"`
}

type AcceptCandidateResponse struct {
	Flashcard *FlashcardResponse `json:"flashcard"`
	Candidate *CandidateResponse `json:"candidate"`
}

func ToAcceptCandidateResponse(card *model.Flashcard, c *model.GenerationCandidate) *AcceptCandidateResponse {
	tags := card.TagIDs
	if tags == nil {
		tags = []int64{}
	}
	return &AcceptCandidateResponse{
		Flashcard: &FlashcardResponse{
			ID:           card.ID,
			Front:        card.Front,
			Back:         card.Back,
			Origin:       card.Origin,
			GenerationID: card.GenerationID,
			TagIDs:       tags,
			CreatedAt:    card.CreatedAt,
		},
		Candidate: ToCandidateResponse(c),
	}
}
