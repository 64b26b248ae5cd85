package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
	"github.com/hitoshi/jobman/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Get(ctx context.Context, actor *model.User) (*model.UserProfile, error)
	Upsert(ctx context.Context, actor *model.User, input profile.UpsertInput) (*model.UserProfile, error)
	SearchPublic(ctx context.Context, actor *model.User, skills []string, location string) ([]*model.UserProfile, error)
}

// ProfileHandler はプロフィール管理のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// profileRequest はプロフィール更新リクエストのボディ。
type profileRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Location   string   `json:"location"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	JobTitle   string   `json:"job_title"`
	ResumeURL  string   `json:"resume_url"`
	AvatarURL  string   `json:"avatar_url"`
	IsPublic   bool     `json:"is_public"`
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Location   string    `json:"location,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Experience string    `json:"experience,omitempty"`
	JobTitle   string    `json:"job_title,omitempty"`
	ResumeURL  string    `json:"resume_url,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsPublic   bool      `json:"is_public"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProfileResponse(p *model.UserProfile) profileResponse {
	return profileResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Location:   p.Location,
		Bio:        p.Bio,
		Skills:     p.Skills,
		Experience: p.Experience,
		JobTitle:   p.JobTitle,
		ResumeURL:  p.ResumeURL,
		AvatarURL:  p.AvatarURL,
		IsPublic:   p.IsPublic,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Get は自分のプロフィール取得を処理する。
// GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	p, err := h.service.Get(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// Upsert はプロフィールの作成・更新を処理する。
// PUT /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	p, err := h.service.Upsert(r.Context(), actor, profile.UpsertInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Location:   req.Location,
		Bio:        req.Bio,
		Skills:     req.Skills,
		Experience: req.Experience,
		JobTitle:   req.JobTitle,
		ResumeURL:  req.ResumeURL,
		AvatarURL:  req.AvatarURL,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// SearchPublic は公開プロフィールの検索を処理する。雇用主のみ利用できる。
// GET /api/profiles/search?skills=go,sql&location=tokyo
func (h *ProfileHandler) SearchPublic(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	var skills []string
	if raw := q.Get("skills"); raw != "" {
		skills = splitAndTrim(raw)
	}

	profiles, err := h.service.SearchPublic(r.Context(), actor, skills, q.Get("location"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, result)
}

// splitAndTrim はカンマ区切りの値を分割し、空要素を除いて返す。
func splitAndTrim(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
