// internal/exchange/binance/client.go
package binance

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/kestrel/internal/exchange"
	"github.com/assist-by/kestrel/internal/order"
)

// USD-M 선물 API 기본 URL입니다
const (
	MainnetBaseURL = "https://fapi.binance.com"
	TestnetBaseURL = "https://testnet.binancefuture.com"
)

// Client는 바이낸스 USD-M 선물 API 클라이언트를 구현합니다
type Client struct {
	apiKey           string
	secretKey        string
	baseURL          string
	recvWindow       int
	httpClient       *http.Client
	log              logrus.FieldLogger
	serverTimeOffset int64 // 서버 시간과의 차이를 저장
	mu               sync.RWMutex
}

var _ exchange.Client = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTestnet은 테스트넷 사용 여부를 설정합니다
func WithTestnet(useTestnet bool) ClientOption {
	return func(c *Client) {
		if useTestnet {
			c.baseURL = TestnetBaseURL
		} else {
			c.baseURL = MainnetBaseURL
		}
	}
}

// WithRecvWindow는 서명 요청의 유효 시간(밀리초)을 설정합니다
func WithRecvWindow(ms int) ClientOption {
	return func(c *Client) {
		if ms > 0 {
			c.recvWindow = ms
		}
	}
}

// WithLogger는 요청/응답 감사 로깅에 사용할 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient는 새로운 바이낸스 API 클라이언트를 생성합니다
func NewClient(apiKey, secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    MainnetBaseURL,
		recvWindow: 5000,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logrus.StandardLogger(),
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Ping은 거래소 연결 상태를 확인합니다
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodGet, "/fapi/v1/ping", nil, false); err != nil {
		return fmt.Errorf("연결 확인 실패: %w", err)
	}
	return nil
}

// SyncTime은 바이낸스 서버와 시간을 동기화합니다.
// 서명 요청의 timestamp는 이 오프셋을 반영해 생성됩니다.
func (c *Client) SyncTime(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/fapi/v1/time", nil, false)
	if err != nil {
		return fmt.Errorf("서버 시간 조회 실패: %w", err)
	}

	var result struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("서버 시간 파싱 실패: %w", err)
	}

	c.mu.Lock()
	c.serverTimeOffset = result.ServerTime - time.Now().UnixMilli()
	c.mu.Unlock()
	return nil
}

// AccountSnapshot은 계정 스냅샷을 원본 매핑 형태로 조회합니다
func (c *Client) AccountSnapshot(ctx context.Context) (map[string]interface{}, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/fapi/v2/account", nil, true)
	if err != nil {
		return nil, fmt.Errorf("계정 조회 실패: %w", err)
	}
	return decodeObject(resp)
}

// TickerPrice는 심볼의 현재 시세를 조회합니다
func (c *Client) TickerPrice(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	resp, err := c.doRequest(ctx, http.MethodGet, "/fapi/v1/ticker/price", params, false)
	if err != nil {
		return nil, fmt.Errorf("시세 조회 실패: %w", err)
	}
	return decodeObject(resp)
}

// Positions는 포지션 목록을 조회합니다. symbol이 비어 있으면 전체를 조회합니다.
// 수량이 0인 포지션을 걸러내는 일은 호출자의 몫입니다.
func (c *Client) Positions(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/fapi/v2/positionRisk", params, true)
	if err != nil {
		return nil, fmt.Errorf("포지션 조회 실패: %w", err)
	}
	return decodeList(resp)
}

// OpenOrders는 열린 주문 목록을 조회합니다. symbol이 비어 있으면 전체를 조회합니다.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/fapi/v1/openOrders", params, true)
	if err != nil {
		return nil, fmt.Errorf("열린 주문 조회 실패: %w", err)
	}
	return decodeList(resp)
}

// CreateOrder는 새로운 주문을 생성하고 거래소 응답을 원본 형태로 반환합니다
func (c *Client) CreateOrder(ctx context.Context, req order.Request) (map[string]interface{}, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/fapi/v1/order", req.Params(), true)
	if err != nil {
		return nil, fmt.Errorf("주문 실행 실패 [심볼: %s, 타입: %s]: %w", req.Symbol, req.Type, err)
	}
	return decodeObject(resp)
}

// CancelOrder는 주문을 취소하고 거래소 응답을 원본 형태로 반환합니다
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))

	resp, err := c.doRequest(ctx, http.MethodDelete, "/fapi/v1/order", params, true)
	if err != nil {
		return nil, fmt.Errorf("주문 취소 실패: %w", err)
	}
	return decodeObject(resp)
}

// ChangeLeverage는 심볼의 레버리지를 변경합니다
func (c *Client) ChangeLeverage(ctx context.Context, symbol string, leverage int) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("leverage", strconv.Itoa(leverage))

	resp, err := c.doRequest(ctx, http.MethodPost, "/fapi/v1/leverage", params, true)
	if err != nil {
		return nil, fmt.Errorf("레버리지 설정 실패: %w", err)
	}
	return decodeObject(resp)
}

// doRequest는 HTTP 요청을 실행하고 응답 본문을 반환합니다
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, needSign bool) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}

	// URL 생성
	reqURL, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("URL 파싱 실패: %w", err)
	}

	// 타임스탬프 추가
	if needSign {
		params.Set("timestamp", strconv.FormatInt(c.serverNow(), 10))
		params.Set("recvWindow", strconv.Itoa(c.recvWindow))
	}

	// 파라미터 설정
	reqURL.RawQuery = params.Encode()

	// 서명 추가
	if needSign {
		signature := c.sign(params.Encode())
		reqURL.RawQuery = reqURL.RawQuery + "&signature=" + signature
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
	}).Debug("API 요청")

	// 요청 생성
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("요청 생성 실패: %w", err)
	}

	// 헤더 설정
	req.Header.Set("Content-Type", "application/json")
	if needSign {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	// 요청 실행
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API 요청 실패: %w", err)
	}
	defer resp.Body.Close()

	// 응답 읽기
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("응답 읽기 실패: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}).Debug("API 응답")

	// 상태 코드 확인
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code int64  `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return nil, fmt.Errorf("HTTP 에러(%d): %s", resp.StatusCode, string(body))
		}
		return nil, &exchange.APIError{Code: apiErr.Code, Message: apiErr.Msg, Status: resp.StatusCode}
	}

	return body, nil
}

// sign은 요청에 대한 서명을 생성합니다
func (c *Client) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(c.secretKey))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// serverNow는 오프셋을 반영한 현재 서버 시간(밀리초)을 반환합니다
func (c *Client) serverNow() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().UnixMilli() + c.serverTimeOffset
}

// decodeObject는 JSON 객체 응답을 원본 매핑으로 디코딩합니다.
// 주문 ID 같은 큰 정수의 정밀도를 지키기 위해 숫자는 json.Number로 둡니다.
func decodeObject(body []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("응답 파싱 실패: %w", err)
	}
	return m, nil
}

// decodeList는 JSON 배열 응답을 원본 매핑 목록으로 디코딩합니다
func decodeList(body []byte) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var list []map[string]interface{}
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("응답 파싱 실패: %w", err)
	}
	return list, nil
}
