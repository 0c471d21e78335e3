package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	"swap-settlement/internal/domain/settlement"
)

func settleBody() map[string]interface{} {
	return map[string]interface{}{
		"order_id":       "order-1",
		"pay_in_amount":  "10000",
		"pay_out_amount": "9500",
		"merchant":       testMerchant,
		"expiry":         1760864400,
		"accounts": map[string]interface{}{
			"source":      "src",
			"destination": "dst",
			"venue": map[string]interface{}{
				"amm_id": "amm",
			},
		},
	}
}

func settledResponse(replayed bool) *settlementapp.SettleResponse {
	return &settlementapp.SettleResponse{
		SettlementID: "sid-1",
		OrderID:      "order-1",
		PayInAmount:  10000,
		PayOutAmount: 9405,
		FeeAmount:    95,
		FeeMode:      "post_swap",
		Payer:        testPayer,
		Merchant:     testMerchant,
		SettledAt:    time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Replayed:     replayed,
		Status:       "completed",
	}
}

func TestSettlementHandler_Settle(t *testing.T) {
	tests := []struct {
		name           string
		payer          string
		body           func() interface{}
		setupMock      func(*MockSettlementService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "正常系: 新規決済は201",
			payer: testPayer,
			body:  func() interface{} { return settleBody() },
			setupMock: func(m *MockSettlementService) {
				m.On("Settle", mock.Anything, mock.MatchedBy(func(req *settlementapp.SettleRequest) bool {
					return req.OrderID == "order-1" &&
						req.PayInAmount == 10000 &&
						req.PayOutAmount == 9500 &&
						req.MinPayOutAmount == 0 &&
						req.Payer == testPayer &&
						req.Accounts.Source == "src" &&
						req.Accounts.Venue.AmmID == "amm"
				})).Return(settledResponse(false), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:  "正常系: 再送は200",
			payer: testPayer,
			body: func() interface{} {
				b := settleBody()
				b["min_pay_out_amount"] = "9400"
				return b
			},
			setupMock: func(m *MockSettlementService) {
				m.On("Settle", mock.Anything, mock.MatchedBy(func(req *settlementapp.SettleRequest) bool {
					return req.MinPayOutAmount == 9400
				})).Return(settledResponse(true), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "正常系: 受取見込み額は省略できる",
			payer: testPayer,
			body: func() interface{} {
				b := settleBody()
				delete(b, "pay_out_amount")
				return b
			},
			setupMock: func(m *MockSettlementService) {
				m.On("Settle", mock.Anything, mock.MatchedBy(func(req *settlementapp.SettleRequest) bool {
					return req.OrderID == "order-1" &&
						req.PayInAmount == 10000 &&
						req.PayOutAmount == 0
				})).Return(settledResponse(false), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: 支払者がトークンにない",
			body:           func() interface{} { return settleBody() },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "異常系: 不正なJSON",
			payer:          testPayer,
			body:           func() interface{} { return "{" },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "異常系: 金額が数値でない",
			payer: testPayer,
			body: func() interface{} {
				b := settleBody()
				b["pay_in_amount"] = "ten"
				return b
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "異常系: 金額が負",
			payer: testPayer,
			body: func() interface{} {
				b := settleBody()
				b["pay_out_amount"] = "-1"
				return b
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "異常系: 最低受取額が不正",
			payer: testPayer,
			body: func() interface{} {
				b := settleBody()
				b["min_pay_out_amount"] = "1e3"
				return b
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "異常系: 期限切れは410",
			payer: testPayer,
			body:  func() interface{} { return settleBody() },
			setupMock: func(m *MockSettlementService) {
				m.On("Settle", mock.Anything, mock.Anything).Return(nil, settlement.ErrExpired)
			},
			expectedStatus: http.StatusGone,
			expectedCode:   "expired",
		},
		{
			name:  "異常系: スワップ失敗は502",
			payer: testPayer,
			body:  func() interface{} { return settleBody() },
			setupMock: func(m *MockSettlementService) {
				m.On("Settle", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: slippage exceeded", settlement.ErrSwapFailed))
			},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "swap_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSettlementService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			e := newTestEcho(tt.payer)
			e.POST("/api/v1/settlements", NewSettlementHandler(svc, new(MockHistoryService)).Settle)

			rec := doRequest(t, e, "POST", "/api/v1/settlements", tt.body())
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated || tt.expectedStatus == http.StatusOK {
				var resp SettlementResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "sid-1", resp.SettlementID)
				assert.Equal(t, "10000", resp.PayInAmount)
				assert.Equal(t, "9405", resp.PayOutAmount)
				assert.Equal(t, "95", resp.FeeAmount)
				assert.Equal(t, "completed", resp.Status)
				assert.Equal(t, tt.expectedStatus == http.StatusOK, resp.Replayed)
			}
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, rec))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSettlementHandler_GetSettlement(t *testing.T) {
	tests := []struct {
		name           string
		payer          string
		setupMock      func(*MockHistoryService)
		expectedStatus int
	}{
		{
			name:  "正常系: 自分の決済記録を取得",
			payer: testPayer,
			setupMock: func(m *MockHistoryService) {
				m.On("GetSettlement", mock.Anything, &historyapp.GetSettlementRequest{OrderID: "order-1", Payer: testPayer}).
					Return(&historyapp.SettlementItem{SettlementID: "sid-1", OrderID: "order-1", PayOutAmount: 9405}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "異常系: 見つからない",
			payer: testPayer,
			setupMock: func(m *MockHistoryService) {
				m.On("GetSettlement", mock.Anything, mock.Anything).Return(nil, settlement.ErrSettlementNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "異常系: 未認証",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHistoryService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			e := newTestEcho(tt.payer)
			e.GET("/api/v1/settlements/:order_id", NewSettlementHandler(new(MockSettlementService), svc).GetSettlement)

			rec := doRequest(t, e, http.MethodGet, "/api/v1/settlements/order-1", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp SettlementResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "9405", resp.PayOutAmount)
				assert.False(t, resp.Replayed)
				assert.Empty(t, resp.Status)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSettlementHandler_ListEntries(t *testing.T) {
	svc := new(MockHistoryService)
	svc.On("ListEntries", mock.Anything, &historyapp.GetSettlementRequest{OrderID: "order-1", Payer: testPayer}).
		Return(&historyapp.ListEntriesResponse{
			SettlementID: "sid-1",
			OrderID:      "order-1",
			Entries: []*historyapp.EntryItem{
				{EntryID: "e1", Kind: "swap_in", Amount: 10000, FromBalanceAfter: 0, ToBalanceAfter: 1010000},
				{EntryID: "e2", Kind: "fee", Amount: 95, FromBalanceAfter: 9405, ToBalanceAfter: 95},
			},
		}, nil)

	e := newTestEcho(testPayer)
	e.GET("/api/v1/settlements/:order_id/entries", NewSettlementHandler(new(MockSettlementService), svc).ListEntries)

	rec := doRequest(t, e, http.MethodGet, "/api/v1/settlements/order-1/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListEntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sid-1", resp.SettlementID)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "swap_in", resp.Entries[0].Kind)
	assert.Equal(t, "1010000", resp.Entries[0].ToBalanceAfter)
	assert.Equal(t, "95", resp.Entries[1].Amount)
	svc.AssertExpectations(t)
}
