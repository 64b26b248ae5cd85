package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobman/internal/middleware"
	"github.com/hitoshi/jobman/internal/model"
)

// --- テストヘルパー ---

// jobseekerActor はテスト用の求職者ユーザーを返す。
func jobseekerActor() *model.User {
	return &model.User{
		ID:    "seeker-1",
		Email: "seeker@example.com",
		Name:  "山田太郎",
		Role:  model.RoleJobSeeker,
	}
}

// employerActor はテスト用の雇用主ユーザーを返す。
func employerActor() *model.User {
	return &model.User{
		ID:    "employer-1",
		Email: "hr@example.com",
		Name:  "採用担当",
		Role:  model.RoleEmployer,
	}
}

// withActor はテスト用にリクエストコンテキストに操作ユーザーを注入するヘルパー。
func withActor(r *http.Request, actor *model.User) *http.Request {
	ctx := middleware.ContextWithActor(r.Context(), actor)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
