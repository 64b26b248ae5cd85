package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
)

// AssistantServiceInterface はAIアシスタントハンドラーが必要とするサービスインターフェース。
type AssistantServiceInterface interface {
	Chat(ctx context.Context, role model.Role, message string) string
	GenerateJobDescription(ctx context.Context, jobTitle, company string) string
	GenerateJobRecommendations(ctx context.Context, userProfile string, skills []string) string
	GenerateInterviewQuestions(ctx context.Context, jobTitle, experience string) string
	OptimizeResume(ctx context.Context, resumeContent, targetJob string) string
}

// AssistantHandler はAIアシスタントのHTTPハンドラー。
type AssistantHandler struct {
	service AssistantServiceInterface
}

// NewAssistantHandler はAssistantHandlerを生成する。
func NewAssistantHandler(service AssistantServiceInterface) *AssistantHandler {
	return &AssistantHandler{service: service}
}

type chatRequest struct {
	Message string `json:"message"`
}

type jobDescriptionRequest struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
}

type recommendationsRequest struct {
	Profile string   `json:"profile"`
	Skills  []string `json:"skills"`
}

type interviewQuestionsRequest struct {
	JobTitle   string `json:"job_title"`
	Experience string `json:"experience"`
}

type optimizeResumeRequest struct {
	Resume    string `json:"resume"`
	TargetJob string `json:"target_job"`
}

// assistantResponse はアシスタント応答のAPIレスポンス。
type assistantResponse struct {
	Reply string `json:"reply"`
}

// Chat はアシスタントとの対話を処理する。
// POST /api/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reply := h.service.Chat(r.Context(), actor.Role, req.Message)
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

// GenerateJobDescription は求人票の下書き生成を処理する。
// POST /api/assistant/job-description
func (h *AssistantHandler) GenerateJobDescription(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.ActorFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req jobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reply := h.service.GenerateJobDescription(r.Context(), req.JobTitle, req.Company)
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

// GenerateJobRecommendations は求人レコメンドの生成を処理する。
// POST /api/assistant/recommendations
func (h *AssistantHandler) GenerateJobRecommendations(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.ActorFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reply := h.service.GenerateJobRecommendations(r.Context(), req.Profile, req.Skills)
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

// GenerateInterviewQuestions は面接想定質問の生成を処理する。
// POST /api/assistant/interview-questions
func (h *AssistantHandler) GenerateInterviewQuestions(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.ActorFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req interviewQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reply := h.service.GenerateInterviewQuestions(r.Context(), req.JobTitle, req.Experience)
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

// OptimizeResume は履歴書の改善提案を処理する。
// POST /api/assistant/optimize-resume
func (h *AssistantHandler) OptimizeResume(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.ActorFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req optimizeResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reply := h.service.OptimizeResume(r.Context(), req.Resume, req.TargetJob)
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}
