package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	authapp "swap-settlement/internal/application/auth"
	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// domainError ドメインエラーとHTTPステータスの対応
type domainError struct {
	target error
	status int
	code   string
}

var domainErrors = []domainError{
	{target: settlement.ErrExpired, status: http.StatusGone, code: "expired"},
	{target: settlement.ErrInvalidRequest, status: http.StatusBadRequest, code: "invalid_request"},
	{target: settlement.ErrUnauthorized, status: http.StatusForbidden, code: "unauthorized"},
	{target: settlement.ErrSwapFailed, status: http.StatusBadGateway, code: "swap_failed"},
	{target: settlement.ErrTransferFailed, status: http.StatusConflict, code: "transfer_failed"},
	{target: settlement.ErrReconciliationInvalid, status: http.StatusUnprocessableEntity, code: "reconciliation_invalid"},
	{target: settlement.ErrArithmeticOverflow, status: http.StatusUnprocessableEntity, code: "arithmetic_overflow"},
	{target: settlement.ErrDuplicateOrder, status: http.StatusConflict, code: "duplicate_order"},
	{target: settlement.ErrSettlementNotFound, status: http.StatusNotFound, code: "settlement_not_found"},
	{target: account.ErrAccountNotFound, status: http.StatusNotFound, code: "account_not_found"},
	{target: account.ErrInvalidAddress, status: http.StatusBadRequest, code: "invalid_address"},
	{target: account.ErrVersionConflict, status: http.StatusConflict, code: "version_conflict"},
	{target: authapp.ErrInvalidCredentials, status: http.StatusUnauthorized, code: "invalid_credentials"},
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, de := range domainErrors {
		if errors.Is(err, de.target) {
			fields := map[string]interface{}{
				"error": err.Error(),
				"code":  de.code,
			}
			if de.status >= 500 {
				logger.Error(ctx, "Upstream failure", err, fields)
			} else {
				logger.Warn(ctx, "Request rejected", fields)
			}
			return c.JSON(de.status, ErrorResponse{
				Error:   de.code,
				Message: err.Error(),
			})
		}
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
