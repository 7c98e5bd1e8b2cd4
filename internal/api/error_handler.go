package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Searching96/flight-management-system-sub002/internal/application"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/flight"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/inventory"
	"github.com/Searching96/flight-management-system-sub002/internal/domain/ticket"
	"github.com/Searching96/flight-management-system-sub002/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ドメインエラーは対応するHTTPステータスへ変換する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := classifyError(err)

	// 5xx はサーバー側の問題なのでエラーログを出す
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// classifyError はエラーをHTTPステータスとメッセージに分類する
func classifyError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, flight.ErrFlightNotFound),
		errors.Is(err, inventory.ErrInventoryNotFound),
		errors.Is(err, ticket.ErrTicketNotFound),
		errors.Is(err, ticket.ErrConfirmationCodeNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, inventory.ErrInsufficientInventory),
		errors.Is(err, ticket.ErrSeatConflict),
		errors.Is(err, ticket.ErrTicketStateStale),
		errors.Is(err, inventory.ErrInventoryInUse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ticket.ErrInvalidStateTransition),
		errors.Is(err, flight.ErrBookingWindowClosed),
		errors.Is(err, application.ErrNoPassengers):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "内部サーバーエラー"
	}
}
