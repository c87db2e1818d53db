// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// User はサービス利用ユーザーを表す。
// 認証情報（メールアドレス、確認フラグ）とプロフィール属性を保持する。
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	Image         string

	// プロフィール属性（すべて任意入力）
	ZodiacSign        string
	SelectedElement   string
	PersonalGoals     string
	AdditionalDetails string
	FocusArea         string
	Gender            string
	AgeRange          string
	BirthDateTime     string
	IncludeTime       bool

	// 旧スキーマ互換フィールド
	Birthday *time.Time
	Age      *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate はプロフィール部分更新の入力を表す。
// nilのフィールドは変更しない。
type ProfileUpdate struct {
	ZodiacSign        *string
	SelectedElement   *string
	PersonalGoals     *string
	AdditionalDetails *string
	FocusArea         *string
	Gender            *string
	AgeRange          *string
	BirthDateTime     *string
	IncludeTime       *bool
	Birthday          *time.Time
}

// IsEmpty は更新対象フィールドが1つも指定されていない場合にtrueを返す。
func (u *ProfileUpdate) IsEmpty() bool {
	return u.ZodiacSign == nil &&
		u.SelectedElement == nil &&
		u.PersonalGoals == nil &&
		u.AdditionalDetails == nil &&
		u.FocusArea == nil &&
		u.Gender == nil &&
		u.AgeRange == nil &&
		u.BirthDateTime == nil &&
		u.IncludeTime == nil &&
		u.Birthday == nil
}

// completenessTrackedFields はプロフィール充足率の算出対象フィールド数。
const completenessTrackedFields = 7

// ProfileCompleteness はプロフィール充足率の算出結果を表す。
type ProfileCompleteness struct {
	Completeness  int
	TotalFields   int
	FilledFields  int
	MissingFields int
}

// CalculateCompleteness はユーザーのプロフィール充足率を算出する。
// 対象は zodiac_sign, selected_element, personal_goals, focus_area,
// gender, age_range, birth_date_time の7フィールド。
// 充足率は filled/total*100 を四捨五入した整数値。
func (u *User) CalculateCompleteness() ProfileCompleteness {
	fields := []string{
		u.ZodiacSign,
		u.SelectedElement,
		u.PersonalGoals,
		u.FocusArea,
		u.Gender,
		u.AgeRange,
		u.BirthDateTime,
	}

	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}

	// 整数演算での四捨五入
	completeness := (filled*100 + completenessTrackedFields/2) / completenessTrackedFields

	return ProfileCompleteness{
		Completeness:  completeness,
		TotalFields:   completenessTrackedFields,
		FilledFields:  filled,
		MissingFields: completenessTrackedFields - filled,
	}
}

// Session はユーザーのログインセッションを表す。
// トークンは不透明な値で、Authorizationヘッダーまたはcookieで送られる。
type Session struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account はユーザーと認証プロバイダーの紐付けを表す。
// credentialプロバイダーの場合はbcryptハッシュ済みパスワードを保持する。
// 外部IdPの場合はプロバイダー発行のトークンを保持する。
type Account struct {
	ID           string
	UserID       string
	ProviderID   string // "credential", "google" 等
	AccountID    string // プロバイダー側のユーザー識別子
	AccessToken  string
	RefreshToken string
	Password     string // credentialプロバイダーのみ
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verification はメールアドレス確認用のトークンを表す。
type Verification struct {
	ID         string
	Identifier string // 確認対象のメールアドレス
	Value      string // 確認トークン
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// AuthEvent は認証関連の監査イベントを表す。
type AuthEvent struct {
	ID        int64
	UserID    string
	EventType string // "login", "logout", "failed_login" 等
	IPAddress string
	UserAgent string
	Timestamp time.Time
}

// 認証イベント種別
const (
	AuthEventLogin       = "login"
	AuthEventLogout      = "logout"
	AuthEventFailedLogin = "failed_login"
	AuthEventSignUp      = "sign_up"
)
