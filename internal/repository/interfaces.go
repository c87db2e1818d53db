// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/tarot42/backend/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateProfile は指定ユーザーのプロフィールを部分更新し、更新後の行を返す。
	// 対象行が存在しない場合はnilを返す。
	UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error)

	// MarkEmailVerified は指定メールアドレスのユーザーを確認済みにする。
	MarkEmailVerified(ctx context.Context, email string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、accounts、user_goals、drawn_cards、auth_eventsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByToken はトークンでセッションを取得する。期限切れまたは未登録の場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// AccountRepository は認証プロバイダー紐付けの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウント紐付けを作成する。
	Create(ctx context.Context, account *model.Account) error

	// FindByProviderAndAccountID はプロバイダーIDとプロバイダー側識別子で検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndAccountID(ctx context.Context, providerID, accountID string) (*model.Account, error)

	// FindByUserAndProvider はユーザーIDとプロバイダーIDで検索する。見つからない場合はnilを返す。
	FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Account, error)
}

// VerificationRepository はメール確認トークンの永続化インターフェース。
type VerificationRepository interface {
	// Create は確認トークンを作成する。
	Create(ctx context.Context, v *model.Verification) error
	// FindByValue はトークン値で検索する。期限切れまたは未登録の場合はnilを返す。
	FindByValue(ctx context.Context, value string) (*model.Verification, error)
	// DeleteByID は指定IDの確認トークンを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByIdentifier は指定メールアドレスの確認トークンを全て削除する。
	DeleteByIdentifier(ctx context.Context, identifier string) error
}

// GoalRepository は目標データの永続化インターフェース。
// 全ての更新・削除は所有者スコープ（id + user_id）で行う。
type GoalRepository interface {
	// Create は目標を作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, goal *model.Goal) error

	// ListByUserID はユーザーの目標一覧を作成日時昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Goal, error)

	// Update は指定ID・所有者の目標を部分更新し、更新後の行を返す。
	// 対象行が存在しない（IDが未登録、または所有者が異なる）場合はnilを返す。
	Update(ctx context.Context, id int64, userID string, update *model.GoalUpdate) (*model.Goal, error)

	// Delete は指定ID・所有者の目標を削除する。
	// 削除できた場合はtrueを、対象行が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64, userID string) (bool, error)
}

// DrawnCardRepository はカード履歴の永続化インターフェース。
type DrawnCardRepository interface {
	// Create はカード履歴を作成し、採番されたIDとタイムスタンプを設定する。
	Create(ctx context.Context, card *model.DrawnCard) error

	// ListByUserID はユーザーのカード履歴をdrawn_at降順で返す。
	ListByUserID(ctx context.Context, userID string, limit int) ([]*model.DrawnCard, error)
}

// AuthEventRepository は認証監査イベントの永続化インターフェース。
type AuthEventRepository interface {
	// Record は監査イベントを記録する。
	Record(ctx context.Context, event *model.AuthEvent) error
}
