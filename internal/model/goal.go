package model

import "time"

// Goal はユーザーが設定した自由記述の目標を表す。
// 必ず1人のユーザーに所有され、所有者のみが参照・変更できる。
type Goal struct {
	ID         int64
	UserID     string
	GoalText   string
	IsAchieved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GoalUpdate は目標の部分更新の入力を表す。nilのフィールドは変更しない。
type GoalUpdate struct {
	GoalText   *string
	IsAchieved *bool
}

// IsEmpty は更新対象フィールドが1つも指定されていない場合にtrueを返す。
func (u *GoalUpdate) IsEmpty() bool {
	return u.GoalText == nil && u.IsAchieved == nil
}
