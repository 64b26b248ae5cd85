package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobman/internal/job"
	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
)

// JobServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	Post(ctx context.Context, actor *model.User, input job.PostInput) (*model.Job, error)
	Get(ctx context.Context, jobID string) (*model.Job, error)
	ListActive(ctx context.Context) ([]*model.Job, error)
	Search(ctx context.Context, filter model.JobFilter) ([]*model.Job, error)
	ListEmployerJobs(ctx context.Context, actor *model.User, filter model.JobFilter) ([]*model.Job, error)
	Update(ctx context.Context, actor *model.User, jobID string, input job.PostInput) (*model.Job, error)
	SetActive(ctx context.Context, actor *model.User, jobID string, active bool) (*model.Job, error)
	Delete(ctx context.Context, actor *model.User, jobID string) error
}

// JobHandler は求人管理のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// jobRequest は求人の投稿・更新リクエストのボディ。
type jobRequest struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	Requirements    string   `json:"requirements"`
	SalaryRange     string   `json:"salary_range"`
	JobType         string   `json:"job_type"`
	RequiredSkills  []string `json:"required_skills"`
	ExperienceLevel string   `json:"experience_level"`
}

func (req jobRequest) toInput() job.PostInput {
	return job.PostInput{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Description:     req.Description,
		Requirements:    req.Requirements,
		SalaryRange:     req.SalaryRange,
		JobType:         model.JobType(req.JobType),
		RequiredSkills:  req.RequiredSkills,
		ExperienceLevel: req.ExperienceLevel,
	}
}

// setActiveRequest は掲載状態切り替えリクエストのボディ。
type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// jobResponse は求人情報のAPIレスポンス。
type jobResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	SalaryRange     string    `json:"salary_range,omitempty"`
	JobType         string    `json:"job_type"`
	RequiredSkills  []string  `json:"required_skills,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	EmployerID      string    `json:"employer_id"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toJobResponse(j *model.Job) jobResponse {
	return jobResponse{
		ID:              j.ID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		Description:     j.Description,
		Requirements:    j.Requirements,
		SalaryRange:     j.SalaryRange,
		JobType:         string(j.JobType),
		RequiredSkills:  j.RequiredSkills,
		ExperienceLevel: j.ExperienceLevel,
		EmployerID:      j.EmployerID,
		IsActive:        j.IsActive,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

func toJobResponses(jobs []*model.Job) []jobResponse {
	result := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		result = append(result, toJobResponse(j))
	}
	return result
}

// filterFromQuery はクエリパラメータから検索フィルタを構築する。
func filterFromQuery(r *http.Request) model.JobFilter {
	q := r.URL.Query()
	return model.JobFilter{
		Term:     q.Get("q"),
		Location: q.Get("location"),
		JobType:  model.JobType(q.Get("type")),
	}
}

// List は掲載中の求人一覧・検索を処理する。
// GET /api/jobs?q=&location=&type=
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	var (
		jobs []*model.Job
		err  error
	)
	if filter.IsEmpty() {
		jobs, err = h.service.ListActive(r.Context())
	} else {
		jobs, err = h.service.Search(r.Context(), filter)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponses(jobs))
}

// Get は求人詳細を取得する。
// GET /api/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	j, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(j))
}

// Post は求人の投稿を処理する。
// POST /api/jobs
func (h *JobHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	j, err := h.service.Post(r.Context(), actor, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobResponse(j))
}

// Update は求人情報の更新を処理する。
// PUT /api/jobs/{id}
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "id")

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	j, err := h.service.Update(r.Context(), actor, jobID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(j))
}

// SetActive は求人の掲載状態切り替えを処理する。
// PATCH /api/jobs/{id}/active
func (h *JobHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "id")

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	j, err := h.service.SetActive(r.Context(), actor, jobID, req.IsActive)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(j))
}

// Delete は求人の削除を処理する。
// DELETE /api/jobs/{id}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actor, jobID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEmployerJobs は自社求人の一覧を処理する。非掲載の求人も含む。
// GET /api/employer/jobs?q=&location=&type=
func (h *JobHandler) ListEmployerJobs(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	jobs, err := h.service.ListEmployerJobs(r.Context(), actor, filterFromQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponses(jobs))
}
