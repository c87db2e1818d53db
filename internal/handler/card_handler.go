package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

// CardServiceInterface はカードハンドラーが必要とするサービスインターフェース。
type CardServiceInterface interface {
	// Record は抽選されたカードを履歴に記録する。
	Record(ctx context.Context, userID, cardName string, upright bool, readingContext string) (*model.DrawnCard, error)
	// History はユーザーのカード抽選履歴を新しい順で返す。
	History(ctx context.Context, userID string, limit int) ([]model.DrawnCard, error)
}

// CardHandler はタロットカード抽選履歴のHTTPハンドラー。
type CardHandler struct {
	service CardServiceInterface
}

// NewCardHandler はCardHandlerを生成する。
func NewCardHandler(service CardServiceInterface) *CardHandler {
	return &CardHandler{
		service: service,
	}
}

// cardResponse はカード抽選履歴のAPIレスポンス。
type cardResponse struct {
	ID             int64  `json:"id"`
	UserID         string `json:"userId"`
	CardName       string `json:"cardName"`
	CardUpright    bool   `json:"cardUpright"`
	ReadingContext string `json:"readingContext,omitempty"`
	DrawnAt        string `json:"drawnAt"`
}

// newCardResponse はDrawnCardモデルからAPIレスポンスを組み立てる。
func newCardResponse(card *model.DrawnCard) cardResponse {
	return cardResponse{
		ID:             card.ID,
		UserID:         card.UserID,
		CardName:       card.CardName,
		CardUpright:    card.CardUpright,
		ReadingContext: card.ReadingContext,
		DrawnAt:        card.DrawnAt.Format(timeFormat),
	}
}

// cardRecordRequest はカード記録リクエストのボディ。
type cardRecordRequest struct {
	CardName       string `json:"cardName"`
	CardUpright    bool   `json:"cardUpright"`
	ReadingContext string `json:"readingContext"`
}

// RecordCard は抽選されたカードを履歴に記録する。
// POST /api/cards
func (h *CardHandler) RecordCard(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	var req cardRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	card, err := h.service.Record(r.Context(), user.ID, req.CardName, req.CardUpright, req.ReadingContext)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCardResponse(card))
}

// ListCards は自分のカード抽選履歴を取得する。
// limitクエリパラメータで件数を指定できる。
// GET /api/cards?limit=50
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			middleware.WriteMessage(w, http.StatusBadRequest, "limitは正の整数で指定してください。")
			return
		}
		limit = parsed
	}

	cards, err := h.service.History(r.Context(), user.ID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]cardResponse, len(cards))
	for i := range cards {
		resp[i] = newCardResponse(&cards[i])
	}

	writeJSON(w, http.StatusOK, resp)
}
