package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/tarot42/backend/internal/model"
)

// AuthErrorBody は認証・サーバーエラーレスポンスのフォーマット。
// モバイルクライアントはcodeフィールドで機械的に分岐する。
type AuthErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageBody はバリデーションエラーや単純な通知のレスポンスフォーマット。
type MessageBody struct {
	Message string `json:"message"`
}

// WriteAuthError は{"error","code"}フォーマットでエラーレスポンスを書き込む。
// 認可ゲートと認証エンドポイントで使用する。
func WriteAuthError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(AuthErrorBody{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAuthError(w, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrCodeInternal,
		Message: "内部エラーが発生しました。しばらく待ってから再度お試しください。",
	})
}

// WriteMessage は{"message"}フォーマットでレスポンスを書き込む。
// バリデーションエラー（400）や結果通知に使用する。
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(MessageBody{Message: message})
}
