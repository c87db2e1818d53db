package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tarot42/backend/internal/model"
)

// --- モック定義 ---

type mockTokenValidator struct {
	validateTokenFn func(ctx context.Context, token string) (*model.User, *model.Session, error)
}

func (m *mockTokenValidator) ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, nil, nil
}

var _ TokenValidator = (*mockTokenValidator)(nil)

// --- テスト ---

func TestAuthGate_ValidBearerToken_InjectsUserAndSession(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			if token != "valid-token" {
				t.Errorf("token = %q, want %q", token, "valid-token")
			}
			return &model.User{ID: "user-1"}, &model.Session{ID: "session-1", Token: token}, nil
		},
	}

	var gotUser *model.User
	var gotSession *model.Session
	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		gotSession, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("コンテキストのユーザーが不正: %+v", gotUser)
	}
	if gotSession == nil || gotSession.ID != "session-1" {
		t.Errorf("コンテキストのセッションが不正: %+v", gotSession)
	}
}

func TestAuthGate_MissingToken_Returns401AndSkipsHandler(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			t.Fatal("トークンなしでバリデーターが呼ばれた")
			return nil, nil, nil
		},
	}

	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("認証失敗時にハンドラーが実行された")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body AuthErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
	if body.Error == "" {
		t.Error("errorメッセージが空")
	}
}

func TestAuthGate_InvalidToken_Returns401(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			// 無効トークンは(nil, nil, nil)
			return nil, nil, nil
		},
	}

	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("無効トークンでハンドラーが実行された")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body AuthErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestAuthGate_ValidatorFailure_Returns500(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			return nil, nil, errors.New("connection refused")
		},
	}

	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("検証失敗時にハンドラーが実行された")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer any-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// 検証処理自体の失敗は認証失敗と区別し、500を返す
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body AuthErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
}

func TestAuthGate_CookieToken_Works(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			if token != "cookie-token" {
				t.Errorf("token = %q, want %q", token, "cookie-token")
			}
			return &model.User{ID: "user-1"}, &model.Session{ID: "session-1"}, nil
		},
	}

	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthGate_BearerTakesPrecedenceOverCookie(t *testing.T) {
	validator := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			if token != "header-token" {
				t.Errorf("token = %q, want Bearerヘッダーの %q", token, "header-token")
			}
			return &model.User{ID: "user-1"}, &model.Session{ID: "session-1"}, nil
		},
	}

	handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthGate_MalformedAuthorizationHeader_Returns401(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"スキームのみ", "Bearer"},
		{"空トークン", "Bearer "},
		{"別のスキーム", "Basic dXNlcjpwYXNz"},
		{"スキームなし", "just-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mockTokenValidator{
				validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
					t.Fatalf("形式不正ヘッダーでバリデーターが呼ばれた: token=%q", token)
					return nil, nil, nil
				},
			}

			handler := NewAuthGateMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("形式不正ヘッダーでハンドラーが実行された")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			req.Header.Set("Authorization", tt.header)
			// 形式不正のヘッダーがあればCookieにはフォールバックしない
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestUserFromContext_Missing_ReturnsError(t *testing.T) {
	_, err := UserFromContext(context.Background())
	if err == nil {
		t.Fatal("ユーザー未設定のコンテキストでエラーを返すべき")
	}
}

func TestSessionFromContext_Missing_ReturnsError(t *testing.T) {
	_, err := SessionFromContext(context.Background())
	if err == nil {
		t.Fatal("セッション未設定のコンテキストでエラーを返すべき")
	}
}

func TestContextWithUser_RoundTrip(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &model.User{ID: "user-42"})

	user, err := UserFromContext(ctx)
	if err != nil {
		t.Fatalf("UserFromContext returned error: %v", err)
	}
	if user.ID != "user-42" {
		t.Errorf("ID = %q, want %q", user.ID, "user-42")
	}
}

func TestContextWithSession_RoundTrip(t *testing.T) {
	ctx := ContextWithSession(context.Background(), &model.Session{ID: "session-42"})

	session, err := SessionFromContext(ctx)
	if err != nil {
		t.Fatalf("SessionFromContext returned error: %v", err)
	}
	if session.ID != "session-42" {
		t.Errorf("ID = %q, want %q", session.ID, "session-42")
	}
}

func TestTimeoutValidator_BoundsValidationWithDeadline(t *testing.T) {
	inner := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Fatal("コンテキストにデッドラインが設定されていない")
			}
			if remaining := time.Until(deadline); remaining > 5*time.Second {
				t.Errorf("デッドラインまでの残り時間 = %v, want <= 5s", remaining)
			}
			return &model.User{ID: "user-1"}, &model.Session{ID: "session-1"}, nil
		},
	}

	validator := NewTimeoutValidator(inner, 5*time.Second)

	user, session, err := validator.ValidateToken(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Errorf("user = %+v", user)
	}
	if session == nil || session.ID != "session-1" {
		t.Errorf("session = %+v", session)
	}
}

func TestTimeoutValidator_ExpiredDeadline_SurfacesContextError(t *testing.T) {
	inner := &mockTokenValidator{
		validateTokenFn: func(ctx context.Context, token string) (*model.User, *model.Session, error) {
			// ストアが応答しない状況を模す
			<-ctx.Done()
			return nil, nil, ctx.Err()
		},
	}

	validator := NewTimeoutValidator(inner, time.Millisecond)

	_, _, err := validator.ValidateToken(context.Background(), "some-token")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestTimeoutValidator_ZeroTimeout_ReturnsValidatorAsIs(t *testing.T) {
	inner := &mockTokenValidator{}

	if got := NewTimeoutValidator(inner, 0); got != TokenValidator(inner) {
		t.Error("timeout 0 では元のバリデーターをそのまま返すべき")
	}
}
