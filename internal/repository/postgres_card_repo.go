package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarot42/backend/internal/model"
)

// PostgresDrawnCardRepo はPostgreSQLを使用したカード履歴リポジトリ。
type PostgresDrawnCardRepo struct {
	db *sql.DB
}

// NewPostgresDrawnCardRepo はPostgresDrawnCardRepoを生成する。
func NewPostgresDrawnCardRepo(db *sql.DB) *PostgresDrawnCardRepo {
	return &PostgresDrawnCardRepo{db: db}
}

// Create はカード履歴を作成し、採番されたIDとタイムスタンプを設定する。
func (r *PostgresDrawnCardRepo) Create(ctx context.Context, card *model.DrawnCard) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO drawn_cards (user_id, card_name, card_upright, reading_context)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, drawn_at`,
		card.UserID, card.CardName, card.CardUpright, card.ReadingContext,
	).Scan(&card.ID, &card.DrawnAt)
	if err != nil {
		return fmt.Errorf("failed to insert drawn card: %w", err)
	}
	return nil
}

// ListByUserID はユーザーのカード履歴をdrawn_at降順で返す。
func (r *PostgresDrawnCardRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.DrawnCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, card_name, card_upright, reading_context, drawn_at
		 FROM drawn_cards
		 WHERE user_id = $1
		 ORDER BY drawn_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawn cards: %w", err)
	}
	defer rows.Close()

	cards := []*model.DrawnCard{}
	for rows.Next() {
		card := &model.DrawnCard{}
		if err := rows.Scan(
			&card.ID, &card.UserID, &card.CardName, &card.CardUpright,
			&card.ReadingContext, &card.DrawnAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan drawn card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drawn cards: %w", err)
	}

	return cards, nil
}

// compile-time interface check
var _ DrawnCardRepository = (*PostgresDrawnCardRepo)(nil)
