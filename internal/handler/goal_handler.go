package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

// GoalServiceInterface は目標ハンドラーが必要とするサービスインターフェース。
type GoalServiceInterface interface {
	// Create は新しい目標を作成する。
	Create(ctx context.Context, userID, goalText string) (*model.Goal, error)
	// List はユーザーの目標一覧を作成日時の昇順で返す。
	List(ctx context.Context, userID string) ([]model.Goal, error)
	// Update は目標を部分更新し、更新後の目標を返す。
	Update(ctx context.Context, userID string, goalID int64, update *model.GoalUpdate) (*model.Goal, error)
	// Delete は目標を削除する。
	Delete(ctx context.Context, userID string, goalID int64) error
}

// GoalHandler は目標管理のHTTPハンドラー。
// すべての操作はリクエストユーザーの所有する目標に限定される。
type GoalHandler struct {
	service GoalServiceInterface
}

// NewGoalHandler はGoalHandlerを生成する。
func NewGoalHandler(service GoalServiceInterface) *GoalHandler {
	return &GoalHandler{
		service: service,
	}
}

// goalResponse は目標のAPIレスポンス。
type goalResponse struct {
	ID         int64  `json:"id"`
	UserID     string `json:"userId"`
	GoalText   string `json:"goalText"`
	IsAchieved bool   `json:"isAchieved"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// newGoalResponse はGoalモデルからAPIレスポンスを組み立てる。
func newGoalResponse(goal *model.Goal) goalResponse {
	return goalResponse{
		ID:         goal.ID,
		UserID:     goal.UserID,
		GoalText:   goal.GoalText,
		IsAchieved: goal.IsAchieved,
		CreatedAt:  goal.CreatedAt.Format(timeFormat),
		UpdatedAt:  goal.UpdatedAt.Format(timeFormat),
	}
}

// goalCreateRequest は目標作成リクエストのボディ。
type goalCreateRequest struct {
	GoalText string `json:"goalText"`
}

// goalUpdateRequest は目標部分更新リクエストのボディ。
// 指定されなかったフィールドは変更しない。
type goalUpdateRequest struct {
	GoalText   *string `json:"goalText"`
	IsAchieved *bool   `json:"isAchieved"`
}

// CreateGoal は新しい目標を作成する。
// POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	var req goalCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	goal, err := h.service.Create(r.Context(), user.ID, req.GoalText)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newGoalResponse(goal))
}

// ListGoals は自分の目標一覧を取得する。
// 目標が1件もない場合は空配列を返す。
// GET /api/goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	goals, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]goalResponse, len(goals))
	for i := range goals {
		resp[i] = newGoalResponse(&goals[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateGoal は目標を部分更新する。
// 存在しないIDと他ユーザーの目標はどちらも404を返す。
// PUT /api/goals/{id}
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	goalID, ok := goalIDFromRequest(w, r)
	if !ok {
		return
	}

	var req goalUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	goal, err := h.service.Update(r.Context(), user.ID, goalID, &model.GoalUpdate{
		GoalText:   req.GoalText,
		IsAchieved: req.IsAchieved,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

// DeleteGoal は目標を削除する。
// 存在しないIDと他ユーザーの目標はどちらも404を返す。
// DELETE /api/goals/{id}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	goalID, ok := goalIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, goalID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// goalIDFromRequest はURLパラメータから目標IDを取り出す。
// 数値でない場合は400を書き込みfalseを返す。
func goalIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	goalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteMessage(w, http.StatusBadRequest, "目標IDが不正です。")
		return 0, false
	}
	return goalID, true
}
