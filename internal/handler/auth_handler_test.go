package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tarot42/backend/internal/auth"
	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signUpFn               func(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error)
	signInFn               func(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error)
	signOutFn              func(ctx context.Context, token string, client auth.ClientInfo) error
	verifyEmailFn          func(ctx context.Context, token string) error
	resendVerificationFn   func(ctx context.Context, email string) error
	getLoginURLFn          func(state string) string
	handleGoogleCallbackFn func(ctx context.Context, code string, client auth.ClientInfo) (*model.Session, error)
	validateTokenFn        func(ctx context.Context, token string) (*model.User, *model.Session, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, name, client)
	}
	return nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password, client)
	}
	return nil, nil, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, token string, client auth.ClientInfo) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token, client)
	}
	return nil
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	if m.verifyEmailFn != nil {
		return m.verifyEmailFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) ResendVerification(ctx context.Context, email string) error {
	if m.resendVerificationFn != nil {
		return m.resendVerificationFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleGoogleCallback(ctx context.Context, code string, client auth.ClientInfo) (*model.Session, error) {
	if m.handleGoogleCallbackFn != nil {
		return m.handleGoogleCallbackFn(ctx, code, client)
	}
	return nil, nil
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, nil, nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func newTestAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 604800,
	})
}

// sessionCookieFromResponse はレスポンスからセッションCookieを取り出す。
func sessionCookieFromResponse(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestSignUp_Returns201(t *testing.T) {
	var gotClient auth.ClientInfo
	service := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error) {
			gotClient = client
			return &model.User{ID: "user-new", Email: email, Name: name}, nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up/email",
		strings.NewReader(`{"email":"new@example.com","password":"password123","name":"新規ユーザー"}`))
	req.RemoteAddr = "203.0.113.10:54321"
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()

	h.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v", err)
	}
	if resp.ID != "user-new" || resp.Email != "new@example.com" {
		t.Errorf("resp = %+v", resp)
	}

	// ポートを除いたIPとUser-Agentが渡される
	if gotClient.IPAddress != "203.0.113.10" {
		t.Errorf("IPAddress = %q, want %q", gotClient.IPAddress, "203.0.113.10")
	}
	if gotClient.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q, want %q", gotClient.UserAgent, "test-agent")
	}
}

func TestSignUp_InputValidation_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		signUpFn: func(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error) {
			t.Fatal("不正な入力でサービスが呼ばれた")
			return nil, nil
		},
	})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"メール未入力", `{"password":"password123","name":"n"}`, "メールアドレスを入力してください。"},
		{"パスワード7文字", `{"email":"a@b.com","password":"1234567","name":"n"}`, "パスワードは8文字以上で入力してください。"},
		{"名前未入力", `{"email":"a@b.com","password":"password123"}`, "名前を入力してください。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up/email", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.SignUp(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if msg := decodeMessage(t, rec); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSignUp_EmailTaken_Returns409(t *testing.T) {
	service := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password, name string, client auth.ClientInfo) (*model.User, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-up/email",
		strings.NewReader(`{"email":"taken@example.com","password":"password123","name":"n"}`))
	rec := httptest.NewRecorder()

	h.SignUp(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if _, code := decodeAuthError(t, rec); code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q, want %q", code, model.ErrCodeEmailTaken)
	}
}

func TestSignIn_Returns200AndSetsCookie(t *testing.T) {
	expiresAt := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	service := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error) {
			return &model.Session{Token: "session-token-1", ExpiresAt: expiresAt},
				&model.User{ID: "user-1", Email: email}, nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/email",
		strings.NewReader(`{"email":"test@example.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v", err)
	}
	if resp.Token != "session-token-1" {
		t.Errorf("Token = %q", resp.Token)
	}
	if resp.User == nil || resp.User.ID != "user-1" {
		t.Errorf("User = %+v", resp.User)
	}

	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil {
		t.Fatal("セッションCookieが設定されていない")
	}
	if cookie.Value != "session-token-1" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("HttpOnlyが設定されていない")
	}
	if cookie.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", cookie.MaxAge)
	}
}

func TestSignIn_MissingFields_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		signInFn: func(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error) {
			t.Fatal("入力不足でサービスが呼ばれた")
			return nil, nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/email",
		strings.NewReader(`{"email":"test@example.com"}`))
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSignIn_InvalidCredentials_Returns401(t *testing.T) {
	service := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/email",
		strings.NewReader(`{"email":"test@example.com","password":"wrong-password"}`))
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if _, code := decodeAuthError(t, rec); code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidCredentials)
	}
}

func TestSignOut_DeletesSessionAndClearsCookie(t *testing.T) {
	var gotToken string
	service := &mockAuthService{
		signOutFn: func(ctx context.Context, token string, client auth.ClientInfo) error {
			gotToken = token
			return nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-token-1"})
	rec := httptest.NewRecorder()

	h.SignOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotToken != "session-token-1" {
		t.Errorf("token = %q, want %q", gotToken, "session-token-1")
	}

	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("cookie = %+v, want cleared", cookie)
	}
}

func TestSignOut_WithoutToken_StillClearsCookie(t *testing.T) {
	service := &mockAuthService{
		signOutFn: func(ctx context.Context, token string, client auth.ClientInfo) error {
			t.Fatal("トークンなしでサービスが呼ばれた")
			return nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	rec := httptest.NewRecorder()

	h.SignOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Errorf("cookie = %+v, want cleared", cookie)
	}
}

func TestVerifyEmail_Returns200(t *testing.T) {
	var gotToken string
	service := &mockAuthService{
		verifyEmailFn: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token=verify-token-1", nil)
	rec := httptest.NewRecorder()

	h.VerifyEmail(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotToken != "verify-token-1" {
		t.Errorf("token = %q, want %q", gotToken, "verify-token-1")
	}
}

func TestVerifyEmail_InvalidToken_Returns400(t *testing.T) {
	service := &mockAuthService{
		verifyEmailFn: func(ctx context.Context, token string) error {
			return model.NewInvalidTokenError()
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token=expired", nil)
	rec := httptest.NewRecorder()

	h.VerifyEmail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if _, code := decodeAuthError(t, rec); code != model.ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidToken)
	}
}

func TestResendVerification_EmptyEmail_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification",
		strings.NewReader(`{"email":""}`))
	rec := httptest.NewRecorder()

	h.ResendVerification(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestResendVerification_UnknownEmail_Returns200(t *testing.T) {
	// 登録されていないメールアドレスでも存在の有無を漏らさず200を返す
	service := &mockAuthService{
		resendVerificationFn: func(ctx context.Context, email string) error {
			return nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification",
		strings.NewReader(`{"email":"unknown@example.com"}`))
	rec := httptest.NewRecorder()

	h.ResendVerification(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGoogleLogin_RedirectsWithStateCookie(t *testing.T) {
	var gotState string
	service := &mockAuthService{
		getLoginURLFn: func(state string) string {
			gotState = state
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil)
	rec := httptest.NewRecorder()

	h.GoogleLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if gotState == "" {
		t.Fatal("stateが生成されていない")
	}

	location := rec.Header().Get("Location")
	if !strings.Contains(location, gotState) {
		t.Errorf("Location = %q にstateが含まれない", location)
	}

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("stateクッキーが設定されていない")
	}
	if stateCookie.Value != gotState {
		t.Errorf("cookie state = %q, want %q", stateCookie.Value, gotState)
	}
	if !stateCookie.HttpOnly {
		t.Error("HttpOnlyが設定されていない")
	}
}

func TestGoogleCallback_Success_SetsSessionAndRedirects(t *testing.T) {
	var gotCode string
	service := &mockAuthService{
		handleGoogleCallbackFn: func(ctx context.Context, code string, client auth.ClientInfo) (*model.Session, error) {
			gotCode = code
			return &model.Session{Token: "oauth-session-token"}, nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=auth-code-1&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-abc"})
	rec := httptest.NewRecorder()

	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if gotCode != "auth-code-1" {
		t.Errorf("code = %q, want %q", gotCode, "auth-code-1")
	}
	if location := rec.Header().Get("Location"); location != "http://localhost:3000" {
		t.Errorf("Location = %q", location)
	}

	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil || cookie.Value != "oauth-session-token" {
		t.Errorf("セッションCookie = %+v", cookie)
	}
}

func TestGoogleCallback_StateMismatch_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		handleGoogleCallbackFn: func(ctx context.Context, code string, client auth.ClientInfo) (*model.Session, error) {
			t.Fatal("state不一致でサービスが呼ばれた")
			return nil, nil
		},
	})

	tests := []struct {
		name   string
		target string
		cookie *http.Cookie
	}{
		{
			"cookieなし",
			"/api/auth/google/callback?code=c&state=state-abc",
			nil,
		},
		{
			"state不一致",
			"/api/auth/google/callback?code=c&state=state-abc",
			&http.Cookie{Name: oauthStateCookie, Value: "state-xyz"},
		},
		{
			"queryのstateが空",
			"/api/auth/google/callback?code=c",
			&http.Cookie{Name: oauthStateCookie, Value: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			h.GoogleCallback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGoogleCallback_MissingCode_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state-abc"})
	rec := httptest.NewRecorder()

	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetSession_ValidToken_Returns200(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	service := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			return &model.User{ID: "user-1"}, &model.Session{Token: token, ExpiresAt: expiresAt}, nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	req.Header.Set("Authorization", "Bearer session-token-1")
	rec := httptest.NewRecorder()

	h.GetSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v", err)
	}
	if resp.Token != "session-token-1" || resp.User == nil || resp.User.ID != "user-1" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetSession_MissingToken_Returns401(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			t.Fatal("トークンなしで検証が呼ばれた")
			return nil, nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	rec := httptest.NewRecorder()

	h.GetSession(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetSession_InvalidToken_Returns401(t *testing.T) {
	service := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			return nil, nil, nil
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	h.GetSession(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if _, code := decodeAuthError(t, rec); code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", code, model.ErrCodeUnauthorized)
	}
}

func TestGetSession_ValidatorFailure_Returns500(t *testing.T) {
	service := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			return nil, nil, context.DeadlineExceeded
		},
	}
	h := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	req.Header.Set("Authorization", "Bearer session-token-1")
	rec := httptest.NewRecorder()

	h.GetSession(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if _, code := decodeAuthError(t, rec); code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInternal)
	}
}

func TestSignIn_CookieDomainFromConfig(t *testing.T) {
	service := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string, client auth.ClientInfo) (*model.Session, *model.User, error) {
			return &model.Session{Token: "session-token", ExpiresAt: time.Now().Add(time.Hour)},
				&model.User{ID: "user-1", Email: email}, nil
		},
	}
	h := NewAuthHandler(service, AuthHandlerConfig{
		BaseURL:       "https://app.tarot42.dev",
		CookieSecure:  true,
		CookieDomain:  "tarot42.dev",
		SessionMaxAge: 604800,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/email",
		strings.NewReader(`{"email":"test@example.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil {
		t.Fatal("セッションCookieが設定されていない")
	}
	if cookie.Domain != "tarot42.dev" {
		t.Errorf("Domain = %q, want %q", cookie.Domain, "tarot42.dev")
	}
}

func TestSignOut_ClearCookieCarriesSameDomain(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{
		BaseURL:       "https://app.tarot42.dev",
		CookieSecure:  true,
		CookieDomain:  "tarot42.dev",
		SessionMaxAge: 604800,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", strings.NewReader(""))
	rec := httptest.NewRecorder()

	h.SignOut(rec, req)

	cookie := sessionCookieFromResponse(t, rec)
	if cookie == nil {
		t.Fatal("クリア用のセッションCookieが設定されていない")
	}
	// 設定時と同じDomainでないとブラウザ側でCookieが残る
	if cookie.Domain != "tarot42.dev" {
		t.Errorf("Domain = %q, want %q", cookie.Domain, "tarot42.dev")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("Cookieがクリアされていない: Value=%q MaxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
