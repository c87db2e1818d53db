package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// CodeはHTTPステータスへのマッピングとクライアント側の分岐に使用する。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeGoalNotFound       = "GOAL_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
)

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError(message string) *APIError {
	if message == "" {
		message = "認証が必要です。"
	}
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "ユーザーが見つかりません。",
	}
}

// NewGoalNotFoundError は目標が見つからない、または所有者が異なる場合のエラーを生成する。
// 存在しないIDと他人のIDは意図的に区別しない。
func NewGoalNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeGoalNotFound,
		Message: "指定された目標が見つかりません。",
	}
}

// NewEmailTakenError はメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailTaken,
		Message: "このメールアドレスは既に登録されています。",
	}
}

// NewInvalidCredentialsError は認証情報が一致しない場合のエラーを生成する。
// メールアドレス未登録とパスワード不一致は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewEmailNotVerifiedError はメールアドレス未確認の場合のエラーを生成する。
func NewEmailNotVerifiedError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailNotVerified,
		Message: "メールアドレスの確認が完了していません。確認メールのリンクを開いてください。",
	}
}

// NewInvalidTokenError は確認トークンが無効または期限切れの場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidToken,
		Message: "トークンが無効または期限切れです。",
	}
}
