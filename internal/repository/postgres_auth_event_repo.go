package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarot42/backend/internal/model"
)

// PostgresAuthEventRepo はPostgreSQLを使用した認証監査イベントリポジトリ。
type PostgresAuthEventRepo struct {
	db *sql.DB
}

// NewPostgresAuthEventRepo はPostgresAuthEventRepoを生成する。
func NewPostgresAuthEventRepo(db *sql.DB) *PostgresAuthEventRepo {
	return &PostgresAuthEventRepo{db: db}
}

// Record は監査イベントを記録する。
func (r *PostgresAuthEventRepo) Record(ctx context.Context, event *model.AuthEvent) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO auth_events (user_id, event_type, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, event_timestamp`,
		event.UserID, event.EventType, event.IPAddress, event.UserAgent,
	).Scan(&event.ID, &event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record auth event: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AuthEventRepository = (*PostgresAuthEventRepo)(nil)
