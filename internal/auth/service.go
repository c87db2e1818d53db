// Package auth はメール/パスワード認証、Google OAuth認証、セッション管理を提供する。
//
// このパッケージが認証エンジンの全体であり、外部からは
// SignUp/SignIn/SignOut/VerifyEmail/HandleGoogleCallbackの各操作と、
// 認可ゲートが使用するValidateTokenのみを公開する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tarot42/backend/internal/model"
	"github.com/tarot42/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// credentialProviderID はメール/パスワード認証のプロバイダー識別子。
const credentialProviderID = "credential"

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATEコード。
const uniqueViolation = "23505"

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	Image          string
	Provider       string // "google" 等
	AccessToken    string
	RefreshToken   string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, Apple等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ClientInfo はリクエスト元クライアントのメタデータを表す。
// セッション行と監査イベントに記録する。
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge   int           // セッション有効期間（秒）
	VerificationTTL time.Duration // 確認トークン有効期間
	BaseURL         string        // 確認リンクのベースURL
}

// AuthMetricsRecorder は認証イベントのメトリクス記録インターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type AuthMetricsRecorder interface {
	RecordAuthEvent(eventType string)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth     OAuthProvider
	hasher    PasswordHasher
	mailer    Mailer
	userRepo  repository.UserRepository
	actRepo   repository.AccountRepository
	sessRepo  repository.SessionRepository
	verifRepo repository.VerificationRepository
	eventRepo repository.AuthEventRepository
	config    ServiceConfig
	metrics   AuthMetricsRecorder
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	hasher PasswordHasher,
	mailer Mailer,
	userRepo repository.UserRepository,
	actRepo repository.AccountRepository,
	sessRepo repository.SessionRepository,
	verifRepo repository.VerificationRepository,
	eventRepo repository.AuthEventRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:     oauth,
		hasher:    hasher,
		mailer:    mailer,
		userRepo:  userRepo,
		actRepo:   actRepo,
		sessRepo:  sessRepo,
		verifRepo: verifRepo,
		eventRepo: eventRepo,
		config:    config,
	}
}

// SignUp はメール/パスワードでユーザーを登録する。
// パスワードはbcryptハッシュとしてcredentialアカウント行に保存する。
// 登録後に確認メールを送信する。送信失敗は登録自体を失敗させない。
func (s *Service) SignUp(ctx context.Context, email, password, name string, client ClientInfo) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account := &model.Account{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		ProviderID: credentialProviderID,
		AccountID:  user.ID,
		Password:   hashed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.actRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create credential account: %w", err)
	}

	s.recordEvent(ctx, user.ID, model.AuthEventSignUp, client)

	if err := s.sendVerification(ctx, email); err != nil {
		slog.Error("failed to send verification mail",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)

	return user, nil
}

// SignIn はメール/パスワードでログインし、セッションを発行する。
// メールアドレス未確認のユーザーはログインできない。
// 認証失敗時はfailed_loginイベントを記録する。
func (s *Service) SignIn(ctx context.Context, email, password string, client ClientInfo) (*model.Session, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	account, err := s.actRepo.FindByUserAndProvider(ctx, user.ID, credentialProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find credential account: %w", err)
	}
	if account == nil {
		// OAuthのみで登録されたユーザー
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(account.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.recordEvent(ctx, user.ID, model.AuthEventFailedLogin, client)
			return nil, nil, model.NewInvalidCredentialsError()
		}
		return nil, nil, fmt.Errorf("failed to compare password: %w", err)
	}

	if !user.EmailVerified {
		return nil, nil, model.NewEmailNotVerifiedError()
	}

	session, err := s.createSession(ctx, user.ID, client)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordEvent(ctx, user.ID, model.AuthEventLogin, client)

	slog.Info("user signed in",
		slog.String("user_id", user.ID),
	)

	return session, user, nil
}

// VerifyEmail は確認トークンを検証し、対象ユーザーを確認済みにする。
// トークンは一度使用すると削除される。
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return model.NewInvalidTokenError()
	}

	verification, err := s.verifRepo.FindByValue(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to find verification: %w", err)
	}
	if verification == nil {
		return model.NewInvalidTokenError()
	}

	if err := s.userRepo.MarkEmailVerified(ctx, verification.Identifier); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	if err := s.verifRepo.DeleteByID(ctx, verification.ID); err != nil {
		return fmt.Errorf("failed to delete verification: %w", err)
	}

	slog.Info("email verified",
		slog.String("email", verification.Identifier),
	)

	return nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleGoogleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとaccountsレコードを自動作成する。
// 同一メールアドレスの既存ユーザーにはアカウント紐付けのみを追加する。
func (s *Service) HandleGoogleCallback(ctx context.Context, code string, client ClientInfo) (*model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. accountsテーブルで既存の紐付けを検索
	account, err := s.actRepo.FindByProviderAndAccountID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	var userID string

	if account != nil {
		// 3a. 既存の紐付け: アカウントからユーザーIDを取得
		userID = account.UserID
		slog.Info("existing user logged in via oauth",
			slog.String("user_id", userID),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		// 3b. 紐付けなし: 同一メールアドレスのユーザーを検索
		email := strings.ToLower(strings.TrimSpace(userInfo.Email))
		user, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}

		now := time.Now()

		if user == nil {
			// 新規ユーザー: IdPがメールアドレスを確認済みのため確認フローは不要
			user = &model.User{
				ID:            uuid.New().String(),
				Name:          userInfo.Name,
				Email:         email,
				EmailVerified: userInfo.EmailVerified,
				Image:         userInfo.Image,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}

			s.recordEvent(ctx, user.ID, model.AuthEventSignUp, client)

			slog.Info("new user created via oauth",
				slog.String("user_id", user.ID),
				slog.String("provider", userInfo.Provider),
			)
		}

		newAccount := &model.Account{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			ProviderID:   userInfo.Provider,
			AccountID:    userInfo.ProviderUserID,
			AccessToken:  userInfo.AccessToken,
			RefreshToken: userInfo.RefreshToken,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.actRepo.Create(ctx, newAccount); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}

		userID = user.ID
	}

	// 4. セッションを発行
	session, err := s.createSession(ctx, userID, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordEvent(ctx, userID, model.AuthEventLogin, client)

	return session, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, token string, client ClientInfo) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	// 監査イベント用にユーザーIDを取得（失敗しても破棄は続行する）
	session, err := s.sessRepo.FindByToken(ctx, token)
	if err != nil {
		slog.Error("failed to find session for sign-out",
			slog.String("error", err.Error()),
		)
	}

	if err := s.sessRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if session != nil {
		s.recordEvent(ctx, session.UserID, model.AuthEventLogout, client)
	}

	slog.Info("user signed out")
	return nil
}

// ValidateToken はセッショントークンを検証する。
// 有効な場合はセッションと所有ユーザーを返す。
// セッションが存在しない・期限切れ・ユーザーが削除済みの場合は(nil, nil, nil)を返す。
// ストア障害などの予期しない失敗のみエラーを返す。
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.User, *model.Session, error) {
	session, err := s.sessRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, nil
	}

	return user, session, nil
}

// ResendVerification は確認メールを再送する。
// 古いトークンは無効化される。登録されていないメールアドレスでもエラーにしない
// （存在の有無を漏らさないため）。
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.EmailVerified {
		return nil
	}

	if err := s.verifRepo.DeleteByIdentifier(ctx, email); err != nil {
		return fmt.Errorf("failed to invalidate old verifications: %w", err)
	}

	return s.sendVerification(ctx, email)
}

// sendVerification は確認トークンを発行してメールを送信する。
func (s *Service) sendVerification(ctx context.Context, email string) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := time.Now()
	verification := &model.Verification{
		ID:         uuid.New().String(),
		Identifier: email,
		Value:      token,
		ExpiresAt:  now.Add(s.config.VerificationTTL),
		CreatedAt:  now,
	}
	if err := s.verifRepo.Create(ctx, verification); err != nil {
		return fmt.Errorf("failed to save verification: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.config.BaseURL, token)
	return s.mailer.SendVerificationMail(ctx, email, verifyURL)
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string, client ClientInfo) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// SetMetricsRecorder は認証イベントのメトリクス記録先を設定する。
// 未設定の場合は監査イベントのDB記録のみを行う。
func (s *Service) SetMetricsRecorder(r AuthMetricsRecorder) {
	s.metrics = r
}

// recordEvent は監査イベントを記録する。記録失敗は呼び出し元の処理を失敗させない。
func (s *Service) recordEvent(ctx context.Context, userID, eventType string, client ClientInfo) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(eventType)
	}

	event := &model.AuthEvent{
		UserID:    userID,
		EventType: eventType,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := s.eventRepo.Record(ctx, event); err != nil {
		slog.Error("failed to record auth event",
			slog.String("user_id", userID),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// generateToken は暗号的に安全な不透明トークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// isUniqueViolation はPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
