package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/tarot42/backend/internal/auth"
	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error)
	SignIn(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error)
	SignOut(ctx context.Context, token string, client auth.ClientInfo) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	GetLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string, client auth.ClientInfo) (*model.Session, error)
	ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieSecure  bool
	CookieDomain  string // 空の場合はホストオンリーCookie
	SessionMaxAge int    // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
// メール/パスワード認証とGoogle OAuthフローの両方を提供する。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// signUpRequest はサインアップリクエストのボディ。
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// resendVerificationRequest は確認メール再送リクエストのボディ。
type resendVerificationRequest struct {
	Email string `json:"email"`
}

// sessionResponse はサインイン成功時のレスポンス。
// トークンはBearerヘッダーでの利用を想定してボディにも含める。
type sessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
	User      *userResponse `json:"user"`
}

// SignUp はメール/パスワードでユーザーを登録する。
// POST /api/auth/sign-up/email
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	if msg := validateSignUp(&req); msg != "" {
		middleware.WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.Name, clientInfoFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// SignIn はメール/パスワードでログインし、セッションを発行する。
// トークンはレスポンスボディとHTTP Only Cookieの両方で返す。
// POST /api/auth/sign-in/email
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		middleware.WriteMessage(w, http.StatusBadRequest, "メールアドレスとパスワードを入力してください。")
		return
	}

	session, user, err := h.service.SignIn(r.Context(), req.Email, req.Password, clientInfoFromRequest(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.Token)

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
		User:      newUserResponse(user),
	})
}

// SignOut はセッションを破棄する。
// POST /api/auth/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromRequest(r)
	if token != "" {
		if err := h.service.SignOut(r.Context(), token, clientInfoFromRequest(r)); err != nil {
			slog.Error("failed to sign out", slog.String("error", err.Error()))
			// サインアウト失敗してもCookieはクリアする
		}
	}

	h.clearSessionCookie(w)
	middleware.WriteMessage(w, http.StatusOK, "サインアウトしました。")
}

// VerifyEmail はメールアドレス確認トークンを検証する。
// GET /api/auth/verify-email?token=xxx
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteMessage(w, http.StatusOK, "メールアドレスの確認が完了しました。")
}

// ResendVerification は確認メールを再送する。
// 登録されていないメールアドレスでも200を返す（存在の有無を漏らさない）。
// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	if req.Email == "" {
		middleware.WriteMessage(w, http.StatusBadRequest, "メールアドレスを入力してください。")
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteMessage(w, http.StatusOK, "確認メールを送信しました。")
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /api/auth/google/login
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理する。
// GET /api/auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		middleware.WriteMessage(w, http.StatusBadRequest, "stateパラメータが不正です。")
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.WriteMessage(w, http.StatusBadRequest, "認可コードがありません。")
		return
	}

	// 3. 認証処理
	session, err := h.service.HandleGoogleCallback(r.Context(), code, clientInfoFromRequest(r))
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// 4. セッションCookieを設定してフロントエンドにリダイレクト
	h.setSessionCookie(w, session.Token)
	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// GetSession は現在のセッションとログインユーザー情報を返す。
// トークンが無効な場合は401を返す。
// GET /api/auth/get-session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromRequest(r)
	if token == "" {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	user, session, err := h.service.ValidateToken(r.Context(), token)
	if err != nil {
		slog.Error("failed to validate session token", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if user == nil || session == nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError("セッションが無効です。再度ログインしてください。"))
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
		User:      newUserResponse(user),
	})
}

// setSessionCookie はセッショントークンをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieをクリアする。
// 設定時と同じDomain/Path属性を付けないとブラウザが別Cookie扱いするため揃える。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// validateSignUp はサインアップ入力を検証し、問題があればメッセージを返す。
func validateSignUp(req *signUpRequest) string {
	if req.Email == "" {
		return "メールアドレスを入力してください。"
	}
	if len(req.Password) < 8 {
		return "パスワードは8文字以上で入力してください。"
	}
	if req.Name == "" {
		return "名前を入力してください。"
	}
	return ""
}

// sessionTokenFromRequest はAuthorization: BearerヘッダーまたはCookieから
// セッショントークンを取り出す。
func sessionTokenFromRequest(r *http.Request) string {
	const prefix = "Bearer "
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > len(prefix) && authHeader[:len(prefix)] == prefix {
		return authHeader[len(prefix):]
	}

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clientInfoFromRequest はリクエストから送信元メタデータを取り出す。
func clientInfoFromRequest(r *http.Request) auth.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return auth.ClientInfo{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
