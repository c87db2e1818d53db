// Package goal は目標管理のドメインロジックを提供する。
package goal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tarot42/backend/internal/model"
	"github.com/tarot42/backend/internal/repository"
	"github.com/tarot42/backend/internal/security"
)

// Service は目標管理のサービス層。
// 目標のCRUD操作はすべてリクエストユーザーの所有範囲に限定される。
type Service struct {
	goalRepo  repository.GoalRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(goalRepo repository.GoalRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		goalRepo:  goalRepo,
		sanitizer: sanitizer,
	}
}

// Create は新しい目標を作成する。
// 目標テキストはサニタイズされ、空の場合はバリデーションエラーを返す。
func (s *Service) Create(ctx context.Context, userID, goalText string) (*model.Goal, error) {
	text := s.sanitizer.Sanitize(goalText)
	if text == "" {
		return nil, model.NewValidationError("目標テキストを入力してください。")
	}

	goal := &model.Goal{
		UserID:   userID,
		GoalText: text,
	}
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("目標の作成に失敗しました: %w", err)
	}

	slog.Info("goal created",
		slog.String("user_id", userID),
		slog.Int64("goal_id", goal.ID),
	)

	return goal, nil
}

// List はユーザーの目標一覧を作成日時の昇順で返す。
// 目標が1件もない場合は空スライスを返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.goalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}

	goals := make([]model.Goal, 0, len(rows))
	for _, g := range rows {
		goals = append(goals, *g)
	}
	return goals, nil
}

// Update は目標を部分更新し、更新後の目標を返す。
// 対象が存在しない場合と他ユーザーの所有物である場合は、
// 区別せずに同一のNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, userID string, goalID int64, update *model.GoalUpdate) (*model.Goal, error) {
	if update == nil || update.IsEmpty() {
		return nil, model.NewValidationError("更新するフィールドを1つ以上指定してください。")
	}

	if update.GoalText != nil {
		text := s.sanitizer.Sanitize(*update.GoalText)
		if text == "" {
			return nil, model.NewValidationError("目標テキストを入力してください。")
		}
		update.GoalText = &text
	}

	goal, err := s.goalRepo.Update(ctx, goalID, userID, update)
	if err != nil {
		return nil, fmt.Errorf("目標の更新に失敗しました: %w", err)
	}
	if goal == nil {
		return nil, model.NewGoalNotFoundError()
	}

	return goal, nil
}

// Delete は目標を削除する。
// 対象が存在しない場合と他ユーザーの所有物である場合は、
// 区別せずに同一のNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, userID string, goalID int64) error {
	deleted, err := s.goalRepo.Delete(ctx, goalID, userID)
	if err != nil {
		return fmt.Errorf("目標の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewGoalNotFoundError()
	}

	slog.Info("goal deleted",
		slog.String("user_id", userID),
		slog.Int64("goal_id", goalID),
	)

	return nil
}
