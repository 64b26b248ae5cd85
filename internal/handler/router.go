package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobman/internal/middleware"
)

// Pinger はヘルスチェック用の疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 求人
	JobService JobServiceInterface

	// 応募
	ApplicationService ApplicationServiceInterface

	// 通知
	NotificationService NotificationServiceInterface

	// プロフィール
	ProfileService ProfileServiceInterface

	// AIアシスタント
	AssistantService AssistantServiceInterface

	// 求人フィード
	JobFeedService JobFeedServiceInterface

	// ヘルスチェック・メトリクス
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Session → CSRF → RateLimit(General)]
//
// 認証ルート（/auth/*）とヘルスチェックは認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	jobHandler := NewJobHandler(deps.JobService)
	appHandler := NewApplicationHandler(deps.ApplicationService)
	notifHandler := NewNotificationHandler(deps.NotificationService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	assistantHandler := NewAssistantHandler(deps.AssistantService)
	feedHandler := NewJobFeedHandler(deps.JobFeedService)

	// --- 認証不要のルート ---

	r.Get("/healthz", NewHealthHandler(deps.DB))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（未ログイン状態から呼ぶためCSRF検証の対象外）
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 求人管理
		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.List)

			// POST /api/jobs - 求人投稿（投稿専用レート制限を追加）
			r.With(deps.RateLimiter.JobPostMiddleware()).Post("/", jobHandler.Post)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", jobHandler.Get)
				r.Put("/", jobHandler.Update)
				r.Patch("/active", jobHandler.SetActive)
				r.Delete("/", jobHandler.Delete)

				// 応募
				r.Post("/applications", appHandler.Apply)
				r.Get("/applications", appHandler.ListForJob)
			})
		})

		// 応募管理
		r.Route("/api/applications", func(r chi.Router) {
			r.Get("/", appHandler.ListMine)
			r.Post("/{id}/review", appHandler.Review)
		})

		// 雇用主ビュー
		r.Route("/api/employer", func(r chi.Router) {
			r.Get("/jobs", jobHandler.ListEmployerJobs)
			r.Get("/applications", appHandler.ListForEmployer)
		})

		// 通知管理
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notifHandler.List)
			r.Get("/unread-count", notifHandler.CountUnread)
			r.Post("/read-all", notifHandler.MarkAllRead)
			r.Post("/{id}/read", notifHandler.MarkRead)
		})

		// プロフィール管理
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Upsert)
		})
		r.Get("/api/profiles/search", profileHandler.SearchPublic)

		// AIアシスタント
		r.Route("/api/assistant", func(r chi.Router) {
			r.Post("/chat", assistantHandler.Chat)
			r.Post("/job-description", assistantHandler.GenerateJobDescription)
			r.Post("/recommendations", assistantHandler.GenerateJobRecommendations)
			r.Post("/interview-questions", assistantHandler.GenerateInterviewQuestions)
			r.Post("/optimize-resume", assistantHandler.OptimizeResume)
		})

		// 求人フィード管理
		r.Route("/api/feeds", func(r chi.Router) {
			r.Get("/", feedHandler.List)
			r.Post("/", feedHandler.Register)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", feedHandler.Get)
				r.Delete("/", feedHandler.Delete)
			})
		})
	})

	return r
}

// NewHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
