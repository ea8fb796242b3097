package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fieldErrorMessage(fe))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, ", "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%sは必須です", fe.Field())
	case "gt":
		return fmt.Sprintf("%sは%sより大きい必要があります", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%sは%s以上である必要があります", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%sは%s以下である必要があります", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%sが不正です（%s）", fe.Field(), fe.Tag())
	}
}
