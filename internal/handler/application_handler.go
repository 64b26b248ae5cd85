package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobman/internal/application"
	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, actor *model.User, jobID string, input application.ApplyInput) (*model.JobApplication, error)
	Review(ctx context.Context, actor *model.User, applicationID string, decision model.ApplicationStatus, employerMessage string) (*model.JobApplication, error)
	ListMine(ctx context.Context, actor *model.User) ([]*model.JobApplication, error)
	ListForJob(ctx context.Context, actor *model.User, jobID string) ([]*model.JobApplication, error)
	ListForEmployer(ctx context.Context, actor *model.User) ([]*model.JobApplication, error)
}

// ApplicationHandler は応募管理のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// applyRequest は応募リクエストのボディ。
type applyRequest struct {
	ResumeURL   string `json:"resume_url"`
	CoverLetter string `json:"cover_letter"`
}

// reviewRequest は応募審査リクエストのボディ。
type reviewRequest struct {
	Decision string `json:"decision"`
	Message  string `json:"message"`
}

// applicationResponse は応募情報のAPIレスポンス。
type applicationResponse struct {
	ID              string     `json:"id"`
	JobID           string     `json:"job_id"`
	ApplicantID     string     `json:"applicant_id"`
	ResumeURL       string     `json:"resume_url,omitempty"`
	CoverLetter     string     `json:"cover_letter,omitempty"`
	Status          string     `json:"status"`
	AppliedAt       time.Time  `json:"applied_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	EmployerMessage string     `json:"employer_message,omitempty"`
}

func toApplicationResponse(a *model.JobApplication) applicationResponse {
	return applicationResponse{
		ID:              a.ID,
		JobID:           a.JobID,
		ApplicantID:     a.ApplicantID,
		ResumeURL:       a.ResumeURL,
		CoverLetter:     a.CoverLetter,
		Status:          string(a.Status),
		AppliedAt:       a.AppliedAt,
		ReviewedAt:      a.ReviewedAt,
		EmployerMessage: a.EmployerMessage,
	}
}

func toApplicationResponses(apps []*model.JobApplication) []applicationResponse {
	result := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		result = append(result, toApplicationResponse(a))
	}
	return result
}

// Apply は求人への応募を処理する。
// POST /api/jobs/{id}/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "id")

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	app, err := h.service.Apply(r.Context(), actor, jobID, application.ApplyInput{
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

// Review は応募の審査を処理する。
// POST /api/applications/{id}/review
func (h *ApplicationHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	applicationID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	app, err := h.service.Review(r.Context(), actor, applicationID, model.ApplicationStatus(req.Decision), req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// ListMine は自分の応募一覧を処理する。
// GET /api/applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	apps, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}

// ListForJob は特定求人への応募一覧を処理する。
// GET /api/jobs/{id}/applications
func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "id")

	apps, err := h.service.ListForJob(r.Context(), actor, jobID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}

// ListForEmployer は自社求人への応募一覧を処理する。
// GET /api/employer/applications
func (h *ApplicationHandler) ListForEmployer(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	apps, err := h.service.ListForEmployer(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}
