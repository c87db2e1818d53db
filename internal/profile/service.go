// Package profile はプロフィール管理のドメインロジックを提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tarot42/backend/internal/model"
	"github.com/tarot42/backend/internal/repository"
	"github.com/tarot42/backend/internal/security"
)

// Service はプロフィール管理のサービス層。
// プロフィールの取得、部分更新、充足率算出のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// Get はユーザーのプロフィールを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update はプロフィールを部分更新し、更新後のプロフィールを返す。
// nilのフィールドは変更しない。更新対象フィールドが1つもない場合は
// バリデーションエラーを返す。同一値での再更新は冪等。
func (s *Service) Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error) {
	if update == nil || update.IsEmpty() {
		return nil, model.NewValidationError("更新するフィールドを1つ以上指定してください。")
	}

	s.sanitizeUpdate(update)

	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	slog.Info("profile updated",
		slog.String("user_id", userID),
	)

	return user, nil
}

// Completeness はプロフィール充足率を算出して返す。
func (s *Service) Completeness(ctx context.Context, userID string) (*model.ProfileCompleteness, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := user.CalculateCompleteness()
	return &result, nil
}

// sanitizeUpdate は自由記述フィールドをサニタイズし、全フィールドの前後空白を除去する。
func (s *Service) sanitizeUpdate(update *model.ProfileUpdate) {
	// 自由記述フィールドはHTMLタグを除去
	for _, p := range []*string{update.PersonalGoals, update.AdditionalDetails} {
		if p != nil {
			*p = s.sanitizer.Sanitize(*p)
		}
	}

	// 選択式フィールドは前後空白のみ除去
	for _, p := range []*string{
		update.ZodiacSign,
		update.SelectedElement,
		update.FocusArea,
		update.Gender,
		update.AgeRange,
		update.BirthDateTime,
	} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
