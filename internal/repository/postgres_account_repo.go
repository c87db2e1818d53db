package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarot42/backend/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウント紐付けリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Create はアカウント紐付けを作成する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, provider_id, account_id, access_token, refresh_token, password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.UserID, account.ProviderID, account.AccountID,
		account.AccessToken, account.RefreshToken, account.Password,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// FindByProviderAndAccountID はプロバイダーIDとプロバイダー側識別子でアカウントを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByProviderAndAccountID(ctx context.Context, providerID, accountID string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider_id, account_id, access_token, refresh_token, password, created_at, updated_at
		 FROM accounts
		 WHERE provider_id = $1 AND account_id = $2`,
		providerID, accountID,
	).Scan(
		&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
		&account.AccessToken, &account.RefreshToken, &account.Password,
		&account.CreatedAt, &account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return account, nil
}

// FindByUserAndProvider はユーザーIDとプロバイダーIDでアカウントを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider_id, account_id, access_token, refresh_token, password, created_at, updated_at
		 FROM accounts
		 WHERE user_id = $1 AND provider_id = $2`,
		userID, providerID,
	).Scan(
		&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
		&account.AccessToken, &account.RefreshToken, &account.Password,
		&account.CreatedAt, &account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by user and provider: %w", err)
	}

	return account, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
