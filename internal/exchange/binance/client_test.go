package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/assist-by/kestrel/internal/domain"
	"github.com/assist-by/kestrel/internal/exchange"
	"github.com/assist-by/kestrel/internal/order"
)

const (
	testAPIKey    = "test-api-key"
	testSecretKey = "test-secret-key"
)

// recordedRequest는 테스트 서버가 수신한 요청을 담습니다
type recordedRequest struct {
	Method string
	Path   string
	APIKey string
	Query  url.Values
}

// newTestClient는 고정 응답을 반환하는 서버와 그 서버를 바라보는 클라이언트를 생성합니다
func newTestClient(t *testing.T, status int, response string, rec *recordedRequest) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.Method = r.Method
			rec.Path = r.URL.Path
			rec.APIKey = r.Header.Get("X-MBX-APIKEY")
			rec.Query = r.URL.Query()
		}
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(testAPIKey, testSecretKey, WithBaseURL(srv.URL), WithTimeout(3*time.Second))
	return client, srv
}

// verifySignature는 수신한 쿼리의 서명이 올바른지 확인합니다
func verifySignature(t *testing.T, query url.Values) {
	t.Helper()

	sig := query.Get("signature")
	if sig == "" {
		t.Fatal("서명 파라미터가 없음")
	}

	signed := url.Values{}
	for k, vs := range query {
		if k == "signature" {
			continue
		}
		for _, v := range vs {
			signed.Add(k, v)
		}
	}

	h := hmac.New(sha256.New, []byte(testSecretKey))
	h.Write([]byte(signed.Encode()))
	expected := hex.EncodeToString(h.Sum(nil))

	if sig != expected {
		t.Errorf("서명 불일치: got %s, want %s", sig, expected)
	}
}

func TestCreateOrder(t *testing.T) {
	rec := &recordedRequest{}
	client, _ := newTestClient(t, http.StatusOK,
		`{"orderId": 283194, "symbol": "BTCUSDT", "status": "NEW", "origQty": "1.000"}`, rec)

	req := order.NewLimit("BTCUSDT", domain.Buy, 1.0, 50000.0, domain.GTC, false)
	resp, err := client.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("주문 실행 중 에러 발생: %v", err)
	}

	if rec.Method != http.MethodPost {
		t.Errorf("HTTP 메서드 불일치: got %s", rec.Method)
	}
	if rec.Path != "/fapi/v1/order" {
		t.Errorf("엔드포인트 불일치: got %s", rec.Path)
	}
	if rec.APIKey != testAPIKey {
		t.Errorf("API 키 헤더 불일치: got %s", rec.APIKey)
	}

	// 주문 파라미터 확인
	for key, want := range map[string]string{
		"symbol":      "BTCUSDT",
		"side":        "BUY",
		"type":        "LIMIT",
		"quantity":    "1",
		"price":       "50000",
		"timeInForce": "GTC",
	} {
		if got := rec.Query.Get(key); got != want {
			t.Errorf("파라미터 %s 불일치: got %q, want %q", key, got, want)
		}
	}
	if rec.Query.Has("reduceOnly") {
		t.Error("reduceOnly가 false인데 파라미터에 포함됨")
	}
	if !rec.Query.Has("timestamp") || !rec.Query.Has("recvWindow") {
		t.Error("서명 요청에 timestamp/recvWindow가 없음")
	}
	verifySignature(t, rec.Query)

	// 응답은 원본 매핑 그대로여야 함
	if got := resp["symbol"]; got != "BTCUSDT" {
		t.Errorf("응답 심볼 불일치: got %v", got)
	}
	if got, ok := resp["orderId"].(json.Number); !ok || got.String() != "283194" {
		t.Errorf("주문 ID가 json.Number로 유지되지 않음: %T %v", resp["orderId"], resp["orderId"])
	}
}

func TestCreateOrderAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadRequest, `{"code": -1121, "msg": "Invalid symbol."}`, nil)

	req := order.NewMarket("NOPEUSDT", domain.Buy, 1.0, false)
	_, err := client.CreateOrder(context.Background(), req)
	if err == nil {
		t.Fatal("에러가 발생해야 함")
	}

	var apiErr *exchange.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError 타입이어야 함: %v", err)
	}
	if apiErr.Code != -1121 {
		t.Errorf("에러 코드 불일치: got %d", apiErr.Code)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("HTTP 상태 불일치: got %d", apiErr.Status)
	}
}

func TestCancelOrder(t *testing.T) {
	rec := &recordedRequest{}
	client, _ := newTestClient(t, http.StatusOK,
		`{"orderId": 283194, "symbol": "BTCUSDT", "status": "CANCELED"}`, rec)

	resp, err := client.CancelOrder(context.Background(), "BTCUSDT", 283194)
	if err != nil {
		t.Fatalf("주문 취소 중 에러 발생: %v", err)
	}

	if rec.Method != http.MethodDelete {
		t.Errorf("HTTP 메서드 불일치: got %s", rec.Method)
	}
	if got := rec.Query.Get("orderId"); got != "283194" {
		t.Errorf("orderId 파라미터 불일치: got %s", got)
	}
	verifySignature(t, rec.Query)

	if got := resp["status"]; got != "CANCELED" {
		t.Errorf("응답 상태 불일치: got %v", got)
	}
}

func TestPositionsQuery(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		wantSymbol bool
	}{
		{name: "특정 심볼 조회", symbol: "BTCUSDT", wantSymbol: true},
		{name: "전체 조회", symbol: "", wantSymbol: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordedRequest{}
			client, _ := newTestClient(t, http.StatusOK,
				`[{"symbol": "BTCUSDT", "positionAmt": "0.5", "entryPrice": "48000"}]`, rec)

			positions, err := client.Positions(context.Background(), tt.symbol)
			if err != nil {
				t.Fatalf("포지션 조회 중 에러 발생: %v", err)
			}

			if rec.Query.Has("symbol") != tt.wantSymbol {
				t.Errorf("symbol 파라미터 포함 여부 불일치: got %v", rec.Query.Has("symbol"))
			}
			if len(positions) != 1 {
				t.Fatalf("포지션 개수 불일치: got %d", len(positions))
			}
			if got := positions[0]["positionAmt"]; got != json.Number("0.5") {
				t.Errorf("positionAmt 불일치: got %v", got)
			}
		})
	}
}

func TestPing(t *testing.T) {
	rec := &recordedRequest{}
	client, _ := newTestClient(t, http.StatusOK, `{}`, rec)

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("연결 확인 중 에러 발생: %v", err)
	}
	if rec.Path != "/fapi/v1/ping" {
		t.Errorf("엔드포인트 불일치: got %s", rec.Path)
	}
	if rec.APIKey != "" {
		t.Error("공개 엔드포인트에 API 키 헤더가 포함됨")
	}
}

func TestSyncTime(t *testing.T) {
	offset := int64(7000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, _ := json.Marshal(map[string]int64{"serverTime": time.Now().UnixMilli() + offset})
		w.Write(resp)
	}))
	defer srv.Close()

	client := NewClient(testAPIKey, testSecretKey, WithBaseURL(srv.URL))
	if err := client.SyncTime(context.Background()); err != nil {
		t.Fatalf("시간 동기화 중 에러 발생: %v", err)
	}

	drift := client.serverNow() - time.Now().UnixMilli()
	if drift < offset-1000 || drift > offset+1000 {
		t.Errorf("서버 시간 오프셋이 반영되지 않음: drift=%dms", drift)
	}
}
