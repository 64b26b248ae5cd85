package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
)

// JobFeedServiceInterface は求人フィードハンドラーが必要とするサービスインターフェース。
type JobFeedServiceInterface interface {
	Register(ctx context.Context, actor *model.User, feedURL string) (*model.JobFeed, error)
	List(ctx context.Context, actor *model.User) ([]*model.JobFeed, error)
	Get(ctx context.Context, actor *model.User, feedID string) (*model.JobFeed, error)
	Delete(ctx context.Context, actor *model.User, feedID string) error
}

// JobFeedHandler は求人フィード管理のHTTPハンドラー。
type JobFeedHandler struct {
	service JobFeedServiceInterface
}

// NewJobFeedHandler はJobFeedHandlerを生成する。
func NewJobFeedHandler(service JobFeedServiceInterface) *JobFeedHandler {
	return &JobFeedHandler{service: service}
}

// registerFeedRequest はフィード登録リクエストのボディ。
type registerFeedRequest struct {
	URL string `json:"url"`
}

// jobFeedResponse は求人フィードのAPIレスポンス。
type jobFeedResponse struct {
	ID                string    `json:"id"`
	FeedURL           string    `json:"feed_url"`
	Title             string    `json:"title,omitempty"`
	FetchStatus       string    `json:"fetch_status"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	NextFetchAt       time.Time `json:"next_fetch_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toJobFeedResponse(f *model.JobFeed) jobFeedResponse {
	return jobFeedResponse{
		ID:                f.ID,
		FeedURL:           f.FeedURL,
		Title:             f.Title,
		FetchStatus:       string(f.FetchStatus),
		ConsecutiveErrors: f.ConsecutiveErrors,
		ErrorMessage:      f.ErrorMessage,
		NextFetchAt:       f.NextFetchAt,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Register はフィードの登録を処理する。雇用主のみ利用できる。
// POST /api/feeds
func (h *JobFeedHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req registerFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	feed, err := h.service.Register(r.Context(), actor, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobFeedResponse(feed))
}

// List は自社フィードの一覧を処理する。
// GET /api/feeds
func (h *JobFeedHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	feeds, err := h.service.List(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]jobFeedResponse, 0, len(feeds))
	for _, f := range feeds {
		result = append(result, toJobFeedResponse(f))
	}

	writeJSON(w, http.StatusOK, result)
}

// Get はフィード詳細の取得を処理する。
// GET /api/feeds/{id}
func (h *JobFeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	feedID := chi.URLParam(r, "id")

	feed, err := h.service.Get(r.Context(), actor, feedID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobFeedResponse(feed))
}

// Delete はフィードの削除を処理する。
// DELETE /api/feeds/{id}
func (h *JobFeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	feedID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actor, feedID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
