package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
	"github.com/sanosuguru/go-webinar-management/internal/pkg/logger"
)

// HeaderUserID は操作ユーザーを識別するヘッダー
const HeaderUserID = "X-User-ID"

const currentUserKey = "current_user"

// UserFinder は操作ユーザーの解決を抽象化する
type UserFinder interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// CurrentUser は X-User-ID ヘッダーから操作ユーザーを解決してコンテキストに格納する
// ヘッダーがない場合・ユーザーが存在しない場合は 401 を返す
func CurrentUser(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(HeaderUserID)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "X-User-IDヘッダーが必要です"})
			}

			ctx := c.Request().Context()
			u, err := users.GetUser(ctx, userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "ユーザーが見つかりません"})
				}
				logger.FromContext(ctx).Error("ユーザー取得エラー", zap.String("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "内部サーバーエラー"})
			}

			SetCurrentUser(c, u)
			return next(c)
		}
	}
}

// SetCurrentUser は操作ユーザーを設定する
func SetCurrentUser(c echo.Context, u *user.User) {
	c.Set(currentUserKey, u)
	ctx := logger.NewContext(c.Request().Context(), logger.FromContext(c.Request().Context()).With(zap.String("user_id", u.ID)))
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetCurrentUser は操作ユーザーを返す（未設定なら nil）
func GetCurrentUser(c echo.Context) *user.User {
	u, _ := c.Get(currentUserKey).(*user.User)
	return u
}
