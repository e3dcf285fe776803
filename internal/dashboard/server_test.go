package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/kestrel/internal/order"
	"github.com/assist-by/kestrel/internal/trading"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubClient는 라우트 테스트용 고정 응답 클라이언트입니다
type stubClient struct {
	createOrderCalls []order.Request

	snapshot        map[string]interface{}
	ticker          map[string]interface{}
	positions       []map[string]interface{}
	openOrders      []map[string]interface{}
	createOrderResp map[string]interface{}
	cancelResp      map[string]interface{}
	leverageResp    map[string]interface{}

	err error
}

func (m *stubClient) Ping(ctx context.Context) error     { return m.err }
func (m *stubClient) SyncTime(ctx context.Context) error { return m.err }

func (m *stubClient) AccountSnapshot(ctx context.Context) (map[string]interface{}, error) {
	return m.snapshot, m.err
}

func (m *stubClient) TickerPrice(ctx context.Context, symbol string) (map[string]interface{}, error) {
	return m.ticker, m.err
}

func (m *stubClient) Positions(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	return m.positions, m.err
}

func (m *stubClient) OpenOrders(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	return m.openOrders, m.err
}

func (m *stubClient) CreateOrder(ctx context.Context, req order.Request) (map[string]interface{}, error) {
	m.createOrderCalls = append(m.createOrderCalls, req)
	return m.createOrderResp, m.err
}

func (m *stubClient) CancelOrder(ctx context.Context, symbol string, orderID int64) (map[string]interface{}, error) {
	return m.cancelResp, m.err
}

func (m *stubClient) ChangeLeverage(ctx context.Context, symbol string, leverage int) (map[string]interface{}, error) {
	return m.leverageResp, m.err
}

// envelope는 대시보드 응답 봉투입니다
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
}

func newTestServer(t *testing.T, stub *stubClient) *Server {
	t.Helper()
	return NewServer(trading.New(stub))
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "응답 본문: %s", w.Body.String())
	return w, env
}

func TestBalanceRoute(t *testing.T) {
	stub := &stubClient{
		snapshot: map[string]interface{}{
			"totalWalletBalance":    "10000.50",
			"availableBalance":      "9500.00",
			"totalUnrealizedProfit": "12.34",
		},
	}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodGet, "/api/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "10000.50", data["totalWalletBalance"])
	assert.Equal(t, "9500.00", data["availableBalance"])
}

func TestPriceRoute(t *testing.T) {
	stub := &stubClient{
		ticker: map[string]interface{}{"symbol": "BTCUSDT", "price": "43250.10"},
	}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodGet, "/api/price/btc", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, "BTC", data["symbol"])
	assert.Equal(t, 43250.10, data["price"])
}

func TestMarketOrderRoute(t *testing.T) {
	stub := &stubClient{
		createOrderResp: map[string]interface{}{"orderId": "12345", "status": "NEW"},
	}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodPost, "/api/order/market",
		`{"symbol":"btc","side":"BUY","quantity":0.5}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Market order placed successfully", env.Message)
	require.Len(t, stub.createOrderCalls, 1)
	assert.Equal(t, "BTCUSDT", stub.createOrderCalls[0].Symbol)
}

func TestMarketOrderRouteValidationError(t *testing.T) {
	stub := &stubClient{}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodPost, "/api/order/market",
		`{"symbol":"BTCUSDT","side":"HOLD","quantity":0.5}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Error, "Validation error:"), "에러 메시지: %s", env.Error)
	assert.Empty(t, stub.createOrderCalls, "검증 실패 시 전송이 없어야 함")
}

func TestLimitOrderRouteStringQuantity(t *testing.T) {
	stub := &stubClient{
		createOrderResp: map[string]interface{}{"orderId": "9", "status": "NEW"},
	}
	s := newTestServer(t, stub)

	// 문자열 수량과 가격도 허용된다
	w, env := doRequest(t, s, http.MethodPost, "/api/order/limit",
		`{"symbol":"ETHUSDT","side":"SELL","quantity":"1.5","price":"2500","timeInForce":"IOC"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.Len(t, stub.createOrderCalls, 1)
	assert.Equal(t, 1.5, stub.createOrderCalls[0].Quantity)
	assert.Equal(t, 2500.0, stub.createOrderCalls[0].Price)
}

func TestClosePositionRouteNoPosition(t *testing.T) {
	stub := &stubClient{positions: []map[string]interface{}{}}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodPost, "/api/position/close",
		`{"symbol":"BTCUSDT"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "No open position for BTCUSDT", env.Error)
	assert.Empty(t, stub.createOrderCalls)
}

func TestClosePositionRoute(t *testing.T) {
	stub := &stubClient{
		positions: []map[string]interface{}{
			{"symbol": "BTCUSDT", "positionAmt": "-0.5"},
		},
		createOrderResp: map[string]interface{}{"orderId": "55", "status": "FILLED"},
	}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodPost, "/api/position/close",
		`{"symbol":"BTCUSDT"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Position closed successfully", env.Message)
	require.Len(t, stub.createOrderCalls, 1)
	assert.True(t, stub.createOrderCalls[0].ReduceOnly)
}

func TestCancelOrderRoute(t *testing.T) {
	stub := &stubClient{
		cancelResp: map[string]interface{}{"orderId": "321", "status": "CANCELED"},
	}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodPost, "/api/order/cancel",
		`{"symbol":"BTCUSDT","orderId":321}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Order cancelled successfully", env.Message)
}

func TestTransportErrorMapsTo400(t *testing.T) {
	stub := &stubClient{err: assert.AnError}
	s := newTestServer(t, stub)

	w, env := doRequest(t, s, http.MethodGet, "/api/balance", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t, &stubClient{snapshot: map[string]interface{}{}})

	req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// 프리플라이트 요청은 본문 없이 바로 응답한다
	req = httptest.NewRequest(http.MethodOptions, "/api/order/market", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexServed(t *testing.T) {
	s := newTestServer(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Kestrel Trading Console")
}
