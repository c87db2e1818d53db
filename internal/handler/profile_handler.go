package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tarot42/backend/internal/middleware"
	"github.com/tarot42/backend/internal/model"
)

// timeFormat はAPIレスポンスの日時フォーマット。
const timeFormat = time.RFC3339

// birthdayFormat は誕生日フィールドの日付フォーマット。
const birthdayFormat = "2006-01-02"

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// Get はユーザーのプロフィールを返す。
	Get(ctx context.Context, userID string) (*model.User, error)
	// Update はプロフィールを部分更新し、更新後のプロフィールを返す。
	Update(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error)
	// Completeness はプロフィール充足率を算出して返す。
	Completeness(ctx context.Context, userID string) (*model.ProfileCompleteness, error)
}

// ProfileHandler はプロフィール管理のHTTPハンドラー。
// すべての操作はリクエストユーザー自身のプロフィールに限定される。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// userResponse はユーザープロフィールのAPIレスポンス。
type userResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"emailVerified"`
	Image             string `json:"image,omitempty"`
	ZodiacSign        string `json:"zodiacSign"`
	SelectedElement   string `json:"selectedElement"`
	PersonalGoals     string `json:"personalGoals"`
	AdditionalDetails string `json:"additionalDetails"`
	FocusArea         string `json:"focusArea"`
	Gender            string `json:"gender"`
	AgeRange          string `json:"ageRange"`
	BirthDateTime     string `json:"birthDateTime"`
	IncludeTime       bool   `json:"includeTime"`
	Birthday          string `json:"birthday,omitempty"`
	Age               *int   `json:"age,omitempty"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// newUserResponse はUserモデルからAPIレスポンスを組み立てる。
func newUserResponse(user *model.User) *userResponse {
	resp := &userResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		EmailVerified:     user.EmailVerified,
		Image:             user.Image,
		ZodiacSign:        user.ZodiacSign,
		SelectedElement:   user.SelectedElement,
		PersonalGoals:     user.PersonalGoals,
		AdditionalDetails: user.AdditionalDetails,
		FocusArea:         user.FocusArea,
		Gender:            user.Gender,
		AgeRange:          user.AgeRange,
		BirthDateTime:     user.BirthDateTime,
		IncludeTime:       user.IncludeTime,
		Age:               user.Age,
		CreatedAt:         user.CreatedAt.Format(timeFormat),
		UpdatedAt:         user.UpdatedAt.Format(timeFormat),
	}

	if user.Birthday != nil {
		resp.Birthday = user.Birthday.Format(birthdayFormat)
	}

	return resp
}

// profileUpdateRequest はプロフィール部分更新リクエストのボディ。
// 指定されなかったフィールドは変更しない。
type profileUpdateRequest struct {
	ZodiacSign        *string `json:"zodiacSign"`
	SelectedElement   *string `json:"selectedElement"`
	PersonalGoals     *string `json:"personalGoals"`
	AdditionalDetails *string `json:"additionalDetails"`
	FocusArea         *string `json:"focusArea"`
	Gender            *string `json:"gender"`
	AgeRange          *string `json:"ageRange"`
	BirthDateTime     *string `json:"birthDateTime"`
	IncludeTime       *bool   `json:"includeTime"`
	Birthday          *string `json:"birthday"`
}

// completenessResponse はプロフィール充足率のAPIレスポンス。
type completenessResponse struct {
	Completeness  int `json:"completeness"`
	TotalFields   int `json:"totalFields"`
	FilledFields  int `json:"filledFields"`
	MissingFields int `json:"missingFields"`
}

// GetProfile は自分のプロフィールを取得する。
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	profile, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(profile))
}

// UpdateProfile はプロフィールを部分更新する。
// 更新対象フィールドが1つもない場合は400を返す。同一値での再更新は冪等。
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	update := &model.ProfileUpdate{
		ZodiacSign:        req.ZodiacSign,
		SelectedElement:   req.SelectedElement,
		PersonalGoals:     req.PersonalGoals,
		AdditionalDetails: req.AdditionalDetails,
		FocusArea:         req.FocusArea,
		Gender:            req.Gender,
		AgeRange:          req.AgeRange,
		BirthDateTime:     req.BirthDateTime,
		IncludeTime:       req.IncludeTime,
	}

	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayFormat, *req.Birthday)
		if err != nil {
			middleware.WriteMessage(w, http.StatusBadRequest, "誕生日はYYYY-MM-DD形式で入力してください。")
			return
		}
		update.Birthday = &birthday
	}

	updated, err := h.service.Update(r.Context(), user.ID, update)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

// GetCompleteness はプロフィール充足率を取得する。
// GET /api/profile/completeness
func (h *ProfileHandler) GetCompleteness(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAuthError(w, http.StatusUnauthorized, model.NewUnauthorizedError(""))
		return
	}

	result, err := h.service.Completeness(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completenessResponse{
		Completeness:  result.Completeness,
		TotalFields:   result.TotalFields,
		FilledFields:  result.FilledFields,
		MissingFields: result.MissingFields,
	})
}
