// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
// バリデーションエラーは{"message"}、認証・システムエラーは{"error","code"}の
// フォーマットで返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeValidation:
			middleware.WriteMessage(w, http.StatusBadRequest, apiErr.Message)
		case model.ErrCodeNotFound, model.ErrCodeUserNotFound, model.ErrCodeGoalNotFound:
			middleware.WriteMessage(w, http.StatusNotFound, apiErr.Message)
		default:
			middleware.WriteAuthError(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		}
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeEmailNotVerified:
		return http.StatusForbidden
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeInvalidToken:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeBadRequestBody はリクエストボディ解析失敗の統一レスポンスを書き込む。
func writeBadRequestBody(w http.ResponseWriter) {
	middleware.WriteMessage(w, http.StatusBadRequest, "リクエストボディの解析に失敗しました。正しいJSON形式でリクエストしてください。")
}
