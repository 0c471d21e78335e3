package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	restmiddleware "swap-settlement/internal/presentation/rest/middleware"
)

// SettlementHandler 決済関連ハンドラー
type SettlementHandler struct {
	settlementService SettlementService
	historyService    HistoryService
}

// NewSettlementHandler 新しいSettlementHandlerを作成
func NewSettlementHandler(settlementService SettlementService, historyService HistoryService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		historyService:    historyService,
	}
}

// Settle 決済処理ハンドラー
// @Summary スワップ決済を実行
// @Description 支払いトークンをスワップし、手数料を差し引いて加盟店へ送金します。同じ注文IDの再送は既存の結果を返します
// @Tags settlement
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SettleRequest true "決済リクエスト"
// @Success 201 {object} SettlementResponse "決済成功"
// @Success 200 {object} SettlementResponse "既存の決済結果（再送）"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 403 {object} ErrorResponse "アカウント所有者の不一致"
// @Failure 409 {object} ErrorResponse "送金失敗または注文ID重複"
// @Failure 410 {object} ErrorResponse "期限切れ"
// @Failure 422 {object} ErrorResponse "残高照合エラー"
// @Failure 502 {object} ErrorResponse "スワップ失敗"
// @Router /settlements [post]
func (h *SettlementHandler) Settle(c echo.Context) error {
	payer := restmiddleware.PayerFrom(c)
	if payer == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "payer not found in token")
	}

	var reqBody SettleRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payIn, err := strconv.ParseUint(reqBody.PayInAmount, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pay_in_amount format")
	}
	// pay_out_amount は参考値のため省略可
	var payOut uint64
	if reqBody.PayOutAmount != "" {
		payOut, err = strconv.ParseUint(reqBody.PayOutAmount, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid pay_out_amount format")
		}
	}
	var minOut uint64
	if reqBody.MinPayOutAmount != "" {
		minOut, err = strconv.ParseUint(reqBody.MinPayOutAmount, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_pay_out_amount format")
		}
	}

	resp, err := h.settlementService.Settle(c.Request().Context(), &settlementapp.SettleRequest{
		OrderID:         reqBody.OrderID,
		PayInAmount:     payIn,
		PayOutAmount:    payOut,
		MinPayOutAmount: minOut,
		Merchant:        reqBody.Merchant,
		Expiry:          reqBody.Expiry,
		Payer:           payer,
		Accounts:        reqBody.Accounts,
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, newSettlementResponseFromSettle(resp))
}

// GetSettlement 決済記録取得ハンドラー
// @Summary 決済記録を取得
// @Description 自分が支払った決済の記録を注文IDで取得します
// @Tags settlement
// @Produce json
// @Security Bearer
// @Param order_id path string true "注文ID"
// @Success 200 {object} SettlementResponse "取得成功"
// @Failure 404 {object} ErrorResponse "決済が見つからない"
// @Router /settlements/{order_id} [get]
func (h *SettlementHandler) GetSettlement(c echo.Context) error {
	payer := restmiddleware.PayerFrom(c)
	if payer == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "payer not found in token")
	}

	item, err := h.historyService.GetSettlement(c.Request().Context(), &historyapp.GetSettlementRequest{
		OrderID: c.Param("order_id"),
		Payer:   payer,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSettlementResponseFromItem(item))
}

// ListEntries 台帳エントリ一覧ハンドラー
// @Summary 決済の台帳エントリを取得
// @Description 決済で発生した送金（スワップ入出金・手数料・正味額）の一覧を取得します
// @Tags settlement
// @Produce json
// @Security Bearer
// @Param order_id path string true "注文ID"
// @Success 200 {object} ListEntriesResponse "取得成功"
// @Failure 404 {object} ErrorResponse "決済が見つからない"
// @Router /settlements/{order_id}/entries [get]
func (h *SettlementHandler) ListEntries(c echo.Context) error {
	payer := restmiddleware.PayerFrom(c)
	if payer == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "payer not found in token")
	}

	resp, err := h.historyService.ListEntries(c.Request().Context(), &historyapp.GetSettlementRequest{
		OrderID: c.Param("order_id"),
		Payer:   payer,
	})
	if err != nil {
		return err
	}

	entries := make([]EntryResponse, len(resp.Entries))
	for i, e := range resp.Entries {
		entries[i] = newEntryResponse(e)
	}

	return c.JSON(http.StatusOK, ListEntriesResponse{
		SettlementID: resp.SettlementID,
		OrderID:      resp.OrderID,
		Entries:      entries,
	})
}
