package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	historyapp "swap-settlement/internal/application/history"
)

// HistoryHandler 管理API向けの決済記録ハンドラー
type HistoryHandler struct {
	historyService HistoryService
}

// NewHistoryHandler 新しいHistoryHandlerを作成
func NewHistoryHandler(historyService HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// ListMerchantSettlements 加盟店の決済記録一覧ハンドラー（管理API用）
// @Summary 加盟店の決済記録一覧を取得（管理API）
// @Description インデクサ向けに加盟店の決済記録を新しい順に取得します
// @Tags admin
// @Produce json
// @Param merchant path string true "加盟店アドレス"
// @Param X-API-Key header string true "APIキー"
// @Param limit query int false "取得件数（デフォルト: 50, 最大: 100)" default(50)
// @Param offset query int false "オフセット（デフォルト: 0)" default(0)
// @Success 200 {object} ListSettlementsResponse "取得成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/merchants/{merchant}/settlements [get]
func (h *HistoryHandler) ListMerchantSettlements(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit parameter")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offset parameter")
	}

	resp, err := h.historyService.ListMerchantSettlements(c.Request().Context(), &historyapp.ListSettlementsRequest{
		Merchant: c.Param("merchant"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}

	settlements := make([]SettlementResponse, len(resp.Settlements))
	for i, item := range resp.Settlements {
		settlements[i] = newSettlementResponseFromItem(item)
	}

	return c.JSON(http.StatusOK, ListSettlementsResponse{
		Settlements: settlements,
		Limit:       resp.Limit,
		Offset:      resp.Offset,
	})
}

// GetSettlementAdmin 決済記録取得ハンドラー（管理API用）
// @Summary 決済記録を取得（管理API）
// @Description 支払者を問わず注文IDで決済記録を取得します
// @Tags admin
// @Produce json
// @Param order_id path string true "注文ID"
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} SettlementResponse "取得成功"
// @Failure 404 {object} ErrorResponse "決済が見つからない"
// @Router /admin/settlements/{order_id} [get]
func (h *HistoryHandler) GetSettlementAdmin(c echo.Context) error {
	item, err := h.historyService.GetSettlement(c.Request().Context(), &historyapp.GetSettlementRequest{
		OrderID: c.Param("order_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSettlementResponseFromItem(item))
}

// queryInt 整数のクエリパラメータを取得（未指定は0）
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
