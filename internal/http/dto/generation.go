package dto

import (
	"time"

	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
)

type CreateGenerationRequest struct {
	SourceText  string   `json:"source_text" binding:"required"`
	Model       string   `json:"model,omitempty" binding:"omitempty,max=255"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type GenerationResponse struct {
	ID               int64                  `json:"id,string"`
	Model            string                 `json:"model"`
	Status           model.GenerationStatus `json:"status"`
	SourceTextLength int                    `json:"source_text_length"`
	SourceTextHash   string                 `json:"source_text_hash"`
	Temperature      *float64               `json:"temperature,omitempty"`
	PromptTokens     *int                   `json:"prompt_tokens,omitempty"`
	PromptVersion    *string                `json:"prompt_version,omitempty"`
	ErrorCode        *string                `json:"error_code,omitempty"`
	ErrorMessage     *string                `json:"error_message,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	StartedAt        *time.Time             `json:"started_at,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
}

func ToGenerationResponse(gen *model.Generation) *GenerationResponse {
	return &GenerationResponse{
		ID:               gen.ID,
		Model:            gen.Model,
		Status:           gen.Status,
		SourceTextLength: gen.SourceTextLength,
		SourceTextHash:   gen.SourceTextHash,
		Temperature:      gen.Temperature,
		PromptTokens:     gen.PromptTokens,
		PromptVersion:    gen.PromptVersion,
		ErrorCode:        gen.ErrorCode,
		ErrorMessage:     gen.ErrorMessage,
		CreatedAt:        gen.CreatedAt,
		UpdatedAt:        gen.UpdatedAt,
		StartedAt:        gen.StartedAt,
		CompletedAt:      gen.CompletedAt,
	}
}

type ListGenerationsResponse struct {
	Generations []*GenerationResponse `json:"generations"`
}

func ToListGenerationsResponse(gens []model.Generation) *ListGenerationsResponse {
	resp := &ListGenerationsResponse{Generations: make([]*GenerationResponse, 0, len(gens))}
	for i := range gens {
		resp.Generations = append(resp.Generations, ToGenerationResponse(&gens[i]))
	}
	return resp
}

// BatchResponse reports a pending sweep triggered through the admin API.
type BatchResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func ToBatchResponse(r generation.BatchResult) *BatchResponse {
	return &BatchResponse{
		Processed: r.Processed,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
	}
}
