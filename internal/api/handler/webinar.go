package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-webinar-management/internal/api/middleware"
	"github.com/sanosuguru/go-webinar-management/internal/application"
	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/logger"
)

type WebinarHandler struct {
	webinarService WebinarServiceInterface
}

func NewWebinarHandler(webinarService WebinarServiceInterface) *WebinarHandler {
	return &WebinarHandler{webinarService: webinarService}
}

type CreateWebinarRequest struct {
	Title   string `json:"title" validate:"required" example:"Goで学ぶドメイン駆動設計"`
	StartAt string `json:"start_at" validate:"required" example:"2025-12-31T18:00:00+09:00"`
	EndAt   string `json:"end_at" validate:"required" example:"2025-12-31T19:00:00+09:00"`
	Seats   int    `json:"seats" validate:"required,gt=0" example:"100"`
}

type ChangeSeatsRequest struct {
	Seats int `json:"seats" validate:"required,gt=0" example:"200"`
}

type WebinarResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrganizerID string `json:"organizer_id" example:"alice"`
	Title       string `json:"title" example:"Goで学ぶドメイン駆動設計"`
	StartAt     string `json:"start_at" example:"2025-12-31T18:00:00+09:00"`
	EndAt       string `json:"end_at" example:"2025-12-31T19:00:00+09:00"`
	Seats       int    `json:"seats" example:"100"`
	CreatedAt   string `json:"created_at" example:"2025-12-06T10:00:00+09:00"`
	UpdatedAt   string `json:"updated_at" example:"2025-12-06T10:00:00+09:00"`
}

func toWebinarResponse(w *webinar.Webinar) *WebinarResponse {
	return &WebinarResponse{
		ID:          w.ID,
		OrganizerID: w.OrganizerID,
		Title:       w.Title,
		StartAt:     w.StartAt.Format(time.RFC3339),
		EndAt:       w.EndAt.Format(time.RFC3339),
		Seats:       w.Seats,
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   w.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary ウェビナーを作成
// @Description 操作ユーザーを主催者としてウェビナーを作成します
// @Tags webinars
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateWebinarRequest true "ウェビナー情報"
// @Success 201 {object} WebinarResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /webinars [post]
func (h *WebinarHandler) Create(c echo.Context) error {
	var req CreateWebinarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "開始時刻の形式が不正です"})
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "終了時刻の形式が不正です"})
	}

	u := middleware.GetCurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "ユーザーが特定できません"})
	}

	w, err := h.webinarService.CreateWebinar(c.Request().Context(), application.CreateWebinarInput{
		OrganizerID: u.ID,
		Title:       req.Title,
		StartAt:     startAt,
		EndAt:       endAt,
		Seats:       req.Seats,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, toWebinarResponse(w))
}

// GetByID godoc
// @Summary ウェビナーを取得
// @Description 指定IDのウェビナーを取得します
// @Tags webinars
// @Produce json
// @Param id path string true "ウェビナーID"
// @Success 200 {object} WebinarResponse
// @Failure 404 {object} map[string]string
// @Router /webinars/{id} [get]
func (h *WebinarHandler) GetByID(c echo.Context) error {
	w, err := h.webinarService.GetWebinar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toWebinarResponse(w))
}

// ChangeSeats godoc
// @Summary 座席数を変更
// @Description 主催者がウェビナーの座席数を増やします（上限1000）
// @Tags webinars
// @Accept json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "ウェビナーID"
// @Param request body ChangeSeatsRequest true "変更後の座席数"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /webinars/{id}/seats [post]
func (h *WebinarHandler) ChangeSeats(c echo.Context) error {
	var req ChangeSeatsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.webinarService.ChangeSeats(c.Request().Context(), application.ChangeSeatsInput{
		User:      middleware.GetCurrentUser(c),
		WebinarID: c.Param("id"),
		Seats:     req.Seats,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WebinarHandler) errorResponse(c echo.Context, err error) error {
	status := webinarErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error("ウェビナー処理エラー", zap.Error(err))
		return c.JSON(status, map[string]string{"error": "内部サーバーエラー"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func webinarErrorStatus(err error) int {
	switch {
	case errors.Is(err, webinar.ErrWebinarNotFound):
		return http.StatusNotFound
	case errors.Is(err, webinar.ErrNotOrganizer):
		return http.StatusForbidden
	case errors.Is(err, webinar.ErrReduceSeats),
		errors.Is(err, webinar.ErrTooManySeats),
		errors.Is(err, webinar.ErrOrganizerIDRequired),
		errors.Is(err, webinar.ErrTitleRequired),
		errors.Is(err, webinar.ErrInvalidSeats),
		errors.Is(err, webinar.ErrInvalidWebinarTime):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrWebinarBusy),
		errors.Is(err, webinar.ErrOptimisticLockConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
