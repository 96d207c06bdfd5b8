package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"flashcards.app/generator/internal/http/handler"
	"flashcards.app/generator/internal/http/middleware"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/service"
	"flashcards.app/generator/internal/store"
)

var _ = Describe("GenerationHandler", func() {
	var (
		router *gin.Engine
		svc    *mockGenerationService
		userID uuid.UUID
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockGenerationService{}
		userID = uuid.New()
		h := handler.NewGenerationHandler(svc)

		rg := router.Group("/generations")
		rg.Use(middleware.RequireUser())
		{
			rg.POST("", h.Create)
			rg.GET("", h.List)
			rg.GET("/:id", h.Get)
			rg.POST("/:id/cancel", h.Cancel)
			rg.GET("/:id/candidates", h.ListCandidates)
		}
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.UserIDHeader, userID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Create", func() {
		It("returns 202 with the queued generation", func() {
			svc.createFn = func(_ context.Context, uid uuid.UUID, input service.CreateGenerationInput) (*model.Generation, bool, error) {
				Expect(uid).To(Equal(userID))
				Expect(input.SourceText).To(Equal("some text"))
				Expect(*input.Temperature).To(Equal(0.5))
				return &model.Generation{ID: 1234567890123456789, Status: model.GenerationStatusPending, Model: "m"}, true, nil
			}

			w := do(http.MethodPost, "/generations", map[string]any{"source_text": "some text", "temperature": 0.5})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("1234567890123456789"))
			Expect(resp["status"]).To(Equal("pending"))
			Expect(resp).NotTo(HaveKey("source_text"))
		})

		It("returns 200 when an identical generation is already active", func() {
			svc.createFn = func(context.Context, uuid.UUID, service.CreateGenerationInput) (*model.Generation, bool, error) {
				return &model.Generation{ID: 1, Status: model.GenerationStatusRunning}, false, nil
			}

			w := do(http.MethodPost, "/generations", map[string]any{"source_text": "some text"})

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 400 when source_text is missing", func() {
			w := do(http.MethodPost, "/generations", map[string]any{"model": "x"})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 422 for validation errors", func() {
			svc.createFn = func(context.Context, uuid.UUID, service.CreateGenerationInput) (*model.Generation, bool, error) {
				return nil, false, &service.ValidationError{Field: "source_text", Message: "too short"}
			}

			w := do(http.MethodPost, "/generations", map[string]any{"source_text": "x"})

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring("source_text"))
		})

		It("returns 401 without a user identity", func() {
			req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewBufferString(`{"source_text":"x"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 500 for unexpected errors", func() {
			svc.createFn = func(context.Context, uuid.UUID, service.CreateGenerationInput) (*model.Generation, bool, error) {
				return nil, false, errors.New("db down")
			}

			w := do(http.MethodPost, "/generations", map[string]any{"source_text": "x"})

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("db down"))
		})
	})

	Describe("Get", func() {
		It("returns the generation", func() {
			svc.getFn = func(_ context.Context, id int64, _ uuid.UUID) (*model.Generation, error) {
				return &model.Generation{ID: id, Status: model.GenerationStatusSucceeded}, nil
			}

			w := do(http.MethodGet, "/generations/42", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"succeeded"`))
		})

		It("returns 404 for another user's generation", func() {
			w := do(http.MethodGet, "/generations/42", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a malformed id", func() {
			w := do(http.MethodGet, "/generations/abc", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		It("passes the limit through", func() {
			svc.listFn = func(_ context.Context, _ uuid.UUID, limit int) ([]model.Generation, error) {
				Expect(limit).To(Equal(5))
				return []model.Generation{{ID: 1}, {ID: 2}}, nil
			}

			w := do(http.MethodGet, "/generations?limit=5", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Generations []map[string]any `json:"generations"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Generations).To(HaveLen(2))
		})

		It("rejects a malformed limit", func() {
			w := do(http.MethodGet, "/generations?limit=many", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Cancel", func() {
		It("returns 409 when the generation already finished", func() {
			svc.cancelFn = func(context.Context, int64, uuid.UUID) (*model.Generation, error) {
				return nil, fmt.Errorf("generation is succeeded: %w", service.ErrInvalidTransition)
			}

			w := do(http.MethodPost, "/generations/42/cancel", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns the cancelled generation", func() {
			svc.cancelFn = func(_ context.Context, id int64, _ uuid.UUID) (*model.Generation, error) {
				return &model.Generation{ID: id, Status: model.GenerationStatusCancelled}, nil
			}

			w := do(http.MethodPost, "/generations/42/cancel", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"cancelled"`))
		})
	})

	Describe("ListCandidates", func() {
		It("returns candidates with string ids", func() {
			svc.listCandidatesFn = func(_ context.Context, id int64, _ uuid.UUID) ([]model.GenerationCandidate, error) {
				return []model.GenerationCandidate{{ID: 7, GenerationID: id, Front: "Q", Back: "A", Status: model.CandidateStatusProposed}}, nil
			}

			w := do(http.MethodGet, "/generations/42/candidates", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Candidates []map[string]any `json:"candidates"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Candidates).To(HaveLen(1))
			Expect(resp.Candidates[0]["id"]).To(Equal("7"))
			Expect(resp.Candidates[0]["generation_id"]).To(Equal("42"))
			Expect(resp.Candidates[0]["suggested_tag_ids"]).To(BeEmpty())
		})

		It("returns 404 for an unknown generation", func() {
			svc.listCandidatesFn = func(context.Context, int64, uuid.UUID) ([]model.GenerationCandidate, error) {
				return nil, store.ErrNotFound
			}

			w := do(http.MethodGet, "/generations/42/candidates", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
