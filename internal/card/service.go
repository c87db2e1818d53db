// Package card はタロットカードの抽選履歴のドメインロジックを提供する。
package card

import (
	"context"
	"fmt"

	"github.com/tarot42/backend/internal/model"
	"github.com/tarot42/backend/internal/repository"
	"github.com/tarot42/backend/internal/security"
)

// defaultHistoryLimit は履歴取得のデフォルト件数上限。
const defaultHistoryLimit = 50

// Service はカード抽選履歴のサービス層。
type Service struct {
	cardRepo  repository.DrawnCardRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(cardRepo repository.DrawnCardRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		cardRepo:  cardRepo,
		sanitizer: sanitizer,
	}
}

// Record は抽選されたカードを履歴に記録する。
// カード名が空の場合はバリデーションエラーを返す。
func (s *Service) Record(ctx context.Context, userID, cardName string, upright bool, readingContext string) (*model.DrawnCard, error) {
	name := s.sanitizer.Sanitize(cardName)
	if name == "" {
		return nil, model.NewValidationError("カード名を入力してください。")
	}

	card := &model.DrawnCard{
		UserID:         userID,
		CardName:       name,
		CardUpright:    upright,
		ReadingContext: s.sanitizer.Sanitize(readingContext),
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("カード履歴の記録に失敗しました: %w", err)
	}

	return card, nil
}

// History はユーザーのカード抽選履歴を新しい順で返す。
// limitが0以下の場合はデフォルト件数を使用する。
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.DrawnCard, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.cardRepo.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("カード履歴の取得に失敗しました: %w", err)
	}

	cards := make([]model.DrawnCard, 0, len(rows))
	for _, c := range rows {
		cards = append(cards, *c)
	}
	return cards, nil
}
