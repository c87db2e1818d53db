// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tarot42/backend/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "tarot42.session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
	userContextKey = contextKey("auth_user")
	// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
	sessionContextKey = contextKey("auth_session")
)

// TokenValidator はセッショントークンの検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
// トークンが無効な場合は(nil, nil, nil)、ストア障害の場合のみエラーを返す。
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error)
}

// NewAuthGateMiddleware はセッショントークンを検証する認可ゲートを返す。
// トークンはAuthorization: Bearerヘッダー、なければセッションCookieから読み取る。
// 有効な場合のみ後続ハンドラーを実行し、認証済みユーザーとセッションを
// リクエストコンテキストに注入する。無効な場合は401、検証処理自体の
// 失敗（DB障害等）の場合は500を返し、後続ハンドラーは一切実行しない。
func NewAuthGateMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. リクエストからトークンを抽出
			token := extractToken(r)
			if token == "" {
				WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError("認証が必要です。"))
				return
			}

			// 2. トークンの有効性を検証
			user, session, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				slog.Error("failed to validate session token",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil || session == nil {
				WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError("セッションが無効です。再度ログインしてください。"))
				return
			}

			// 3. 認証済みユーザーとセッションをコンテキストに注入
			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// timeoutValidator は委譲先のValidateToken呼び出しに上限時間を設ける。
type timeoutValidator struct {
	next    TokenValidator
	timeout time.Duration
}

// NewTimeoutValidator はセッション検証のストア呼び出しに上限時間を設けた
// TokenValidatorを返す。DBが応答しない場合でもゲートがハングせず、
// コンテキストのデッドラインエラーとして500にマッピングされる。
// timeoutが0以下の場合はnextをそのまま返す。
func NewTimeoutValidator(next TokenValidator, timeout time.Duration) TokenValidator {
	if timeout <= 0 {
		return next
	}
	return &timeoutValidator{next: next, timeout: timeout}
}

func (v *timeoutValidator) ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	return v.next.ValidateToken(ctx, token)
}

// extractToken はリクエストからセッショントークンを取り出す。
// Authorization: Bearerヘッダーを優先し、なければCookieを参照する。
// 両方に存在する場合はヘッダーが優先される。
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1]
		}
		// 形式不正のヘッダーはCookieにフォールバックしない
		return ""
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認可ゲートを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// 認可ゲートを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*model.Session, error) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return session, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// ContextWithSession はコンテキストにセッションを注入する。
// テスト用。
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
