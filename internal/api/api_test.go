package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatsRequest struct {
	Seats int    `validate:"required,gt=0,lte=1000"`
	Title string `validate:"required"`
}

func TestCustomValidator(t *testing.T) {
	v := NewValidator()

	t.Run("有効なリクエスト", func(t *testing.T) {
		assert.NoError(t, v.Validate(&seatsRequest{Seats: 200, Title: "webinar"}))
	})

	t.Run("不正なリクエストは400", func(t *testing.T) {
		err := v.Validate(&seatsRequest{Seats: 1500})

		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Contains(t, he.Message, "Seatsは1000以下である必要があります")
		assert.Contains(t, he.Message, "Titleは必須です")
	})
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"HTTPErrorのコードとメッセージを使う", echo.NewHTTPError(http.StatusBadRequest, "不正です"), http.StatusBadRequest, "不正です"},
		{"文字列以外のメッセージはステータステキスト", echo.NewHTTPError(http.StatusNotFound), http.StatusNotFound, "Not Found"},
		{"その他のエラーは500", errors.New("boom"), http.StatusInternalServerError, "内部サーバーエラー"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			CustomHTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Error)
			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}
