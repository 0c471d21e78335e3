package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	accountapp "swap-settlement/internal/application/account"
	restmiddleware "swap-settlement/internal/presentation/rest/middleware"
)

// AccountResponse トークンアカウント
// @Description トークンアカウント
type AccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance string `json:"balance" example:"1000000"`
}

// AccountHandler アカウント関連ハンドラー
type AccountHandler struct {
	accountService AccountService
}

// NewAccountHandler 新しいAccountHandlerを作成
func NewAccountHandler(accountService AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GetAccount アカウント取得ハンドラー
// @Summary トークンアカウントを取得
// @Description 自分が所有するトークンアカウントの残高を取得します
// @Tags account
// @Produce json
// @Security Bearer
// @Param address path string true "アカウントアドレス"
// @Success 200 {object} AccountResponse "取得成功"
// @Failure 400 {object} ErrorResponse "不正なアドレス"
// @Failure 404 {object} ErrorResponse "アカウントが見つからない"
// @Router /accounts/{address} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	payer := restmiddleware.PayerFrom(c)
	if payer == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "payer not found in token")
	}

	resp, err := h.accountService.GetAccount(c.Request().Context(), &accountapp.GetAccountRequest{
		Address: c.Param("address"),
		Owner:   payer,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AccountResponse{
		Address: resp.Address,
		Mint:    resp.Mint,
		Owner:   resp.Owner,
		Balance: strconv.FormatUint(resp.Balance, 10),
	})
}
