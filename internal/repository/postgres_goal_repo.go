package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tarot42/backend/internal/model"
)

// PostgresGoalRepo はPostgreSQLを使用した目標リポジトリ。
// 更新・削除は必ずid + user_idの両方でスコープし、
// 他ユーザーの行をIDの推測で変更できないことを保証する。
type PostgresGoalRepo struct {
	db *sql.DB
}

// NewPostgresGoalRepo はPostgresGoalRepoを生成する。
func NewPostgresGoalRepo(db *sql.DB) *PostgresGoalRepo {
	return &PostgresGoalRepo{db: db}
}

// Create は目標を作成し、採番されたIDとタイムスタンプを設定する。
func (r *PostgresGoalRepo) Create(ctx context.Context, goal *model.Goal) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO user_goals (user_id, goal_text, is_achieved)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		goal.UserID, goal.GoalText, goal.IsAchieved,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの目標一覧を作成日時昇順で返す。
// 目標が存在しない場合は空スライスを返す（エラーではない）。
func (r *PostgresGoalRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, goal_text, is_achieved, created_at, updated_at
		 FROM user_goals
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*model.Goal{}
	for rows.Next() {
		goal := &model.Goal{}
		if err := rows.Scan(
			&goal.ID, &goal.UserID, &goal.GoalText, &goal.IsAchieved,
			&goal.CreatedAt, &goal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// Update は指定ID・所有者の目標を部分更新し、更新後の行を返す。
// WHERE句はid + user_idの両方でスコープするため、
// IDが未登録の場合と所有者が異なる場合のどちらもnilを返す。
func (r *PostgresGoalRepo) Update(ctx context.Context, id int64, userID string, update *model.GoalUpdate) (*model.Goal, error) {
	var sets []string
	var args []any

	if update.GoalText != nil {
		args = append(args, *update.GoalText)
		sets = append(sets, fmt.Sprintf("goal_text = $%d", len(args)))
	}
	if update.IsAchieved != nil {
		args = append(args, *update.IsAchieved)
		sets = append(sets, fmt.Sprintf("is_achieved = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, userID)
	query := fmt.Sprintf(
		`UPDATE user_goals SET %s WHERE id = $%d AND user_id = $%d
		 RETURNING id, user_id, goal_text, is_achieved, created_at, updated_at`,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	goal := &model.Goal{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&goal.ID, &goal.UserID, &goal.GoalText, &goal.IsAchieved,
		&goal.CreatedAt, &goal.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

// Delete は指定ID・所有者の目標を削除する。
// 対象行が存在しない（IDが未登録、または所有者が異なる）場合はfalseを返す。
func (r *PostgresGoalRepo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_goals WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete goal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ GoalRepository = (*PostgresGoalRepo)(nil)
