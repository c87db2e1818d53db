package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarot42/backend/internal/model"
)

// PostgresVerificationRepo はPostgreSQLを使用したメール確認トークンリポジトリ。
type PostgresVerificationRepo struct {
	db *sql.DB
}

// NewPostgresVerificationRepo はPostgresVerificationRepoを生成する。
func NewPostgresVerificationRepo(db *sql.DB) *PostgresVerificationRepo {
	return &PostgresVerificationRepo{db: db}
}

// Create は確認トークンを作成する。
func (r *PostgresVerificationRepo) Create(ctx context.Context, v *model.Verification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verifications (id, identifier, value, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		v.ID, v.Identifier, v.Value, v.ExpiresAt, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// FindByValue はトークン値で確認トークンを検索する。期限切れまたは未登録の場合はnilを返す。
func (r *PostgresVerificationRepo) FindByValue(ctx context.Context, value string) (*model.Verification, error) {
	v := &model.Verification{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, identifier, value, expires_at, created_at
		 FROM verifications
		 WHERE value = $1 AND expires_at > now()`,
		value,
	).Scan(&v.ID, &v.Identifier, &v.Value, &v.ExpiresAt, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification: %w", err)
	}

	return v, nil
}

// DeleteByID は指定IDの確認トークンを削除する。
func (r *PostgresVerificationRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verifications WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete verification: %w", err)
	}
	return nil
}

// DeleteByIdentifier は指定メールアドレスの確認トークンを全て削除する。
// 再送時に古いトークンを無効化するために使用する。
func (r *PostgresVerificationRepo) DeleteByIdentifier(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verifications WHERE identifier = $1`,
		identifier,
	)
	if err != nil {
		return fmt.Errorf("failed to delete verifications by identifier: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VerificationRepository = (*PostgresVerificationRepo)(nil)
