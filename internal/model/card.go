package model

import "time"

// DrawnCard はユーザーが引いたタロットカードの履歴を表す。
type DrawnCard struct {
	ID             int64
	UserID         string
	CardName       string
	CardUpright    bool
	ReadingContext string
	DrawnAt        time.Time
}
