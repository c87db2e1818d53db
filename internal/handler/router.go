package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tarot42/backend/internal/metrics"
	"github.com/tarot42/backend/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	MetricsRecorder   middleware.HTTPMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// プロフィール
	ProfileService ProfileServiceInterface

	// 目標
	GoalService GoalServiceInterface

	// カード履歴
	CardService CardServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// ヘルスチェック
	DB Pinger

	// メトリクス公開
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging
//
// 認証ルート（/api/auth/*）とヘルスチェックは認可ゲートの外に配置する。
// それ以外の/api/*ルートは認可ゲートを通過しない限りハンドラーが実行されない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	goalHandler := NewGoalHandler(deps.GoalService)
	cardHandler := NewCardHandler(deps.CardService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/api/health", healthHandler.Health)

	// Prometheusスクレイプ
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート（IP単位のレート制限を適用）
	r.Route("/api/auth", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthMiddleware())
		}

		r.Post("/sign-up/email", authHandler.SignUp)
		r.Post("/sign-in/email", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		r.Get("/get-session", authHandler.GetSession)
		r.Get("/verify-email", authHandler.VerifyEmail)
		r.Post("/resend-verification", authHandler.ResendVerification)

		// OAuthフロー
		r.Get("/google/login", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: AuthGate → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthGateMiddleware(deps.TokenValidator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// プロフィール管理
		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
			r.Get("/completeness", profileHandler.GetCompleteness)
		})

		// 目標管理
		r.Route("/api/goals", func(r chi.Router) {
			r.Post("/", goalHandler.CreateGoal)
			r.Get("/", goalHandler.ListGoals)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", goalHandler.UpdateGoal)
				r.Delete("/", goalHandler.DeleteGoal)
			})
		})

		// カード抽選履歴
		r.Route("/api/cards", func(r chi.Router) {
			r.Post("/", cardHandler.RecordCard)
			r.Get("/", cardHandler.ListCards)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
