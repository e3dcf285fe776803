package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/kestrel/internal/domain"
	"github.com/assist-by/kestrel/internal/exchange"
	"github.com/assist-by/kestrel/internal/metrics"
	"github.com/assist-by/kestrel/internal/notification"
	"github.com/assist-by/kestrel/internal/order"
	"github.com/assist-by/kestrel/internal/validate"
)

// Trader는 검증, 주문 조립, 전송, 응답 기록을 관장하는 거래 게이트웨이입니다.
// 모든 주문 오퍼레이션은 검증 → 조립 → 전송 → 기록 순서를 따르며,
// 검증에 실패하면 어떤 네트워크 호출도 일어나지 않습니다.
type Trader struct {
	client   exchange.Client
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	notifier notification.Notifier

	minQty float64
	maxQty float64
}

// Option은 Trader 생성 옵션을 정의합니다
type Option func(*Trader)

// WithLogger는 주문 감사 로그에 사용할 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Trader) {
		t.log = log
	}
}

// WithMetrics는 오퍼레이션 지표 수집기를 설정합니다
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Trader) {
		t.metrics = m
	}
}

// WithNotifier는 주문 접수 알림을 보낼 채널을 설정합니다
func WithNotifier(n notification.Notifier) Option {
	return func(t *Trader) {
		t.notifier = n
	}
}

// WithQuantityBounds는 수량 검증 범위를 설정합니다
func WithQuantityBounds(min, max float64) Option {
	return func(t *Trader) {
		t.minQty = min
		t.maxQty = max
	}
}

// New는 새로운 거래 게이트웨이를 생성합니다
func New(client exchange.Client, opts ...Option) *Trader {
	t := &Trader{
		client: client,
		log:    logrus.StandardLogger(),
		minQty: validate.DefaultMinQuantity,
		maxQty: validate.DefaultMaxQuantity,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// CheckConnection은 API 연결과 계정 접근 가능 여부를 확인하고 잔고를 기록합니다
func (t *Trader) CheckConnection(ctx context.Context) error {
	if err := t.client.Ping(ctx); err != nil {
		return fmt.Errorf("연결 확인 실패: %w", err)
	}

	balance, err := t.AccountBalance(ctx)
	if err != nil {
		return fmt.Errorf("계정 조회 실패: %w", err)
	}

	t.log.WithFields(logrus.Fields(balance)).Info("API 연결 확인 완료")
	return nil
}

// AccountBalance는 계정 스냅샷에서 잔고 요약을 추출합니다.
// 스냅샷에 없는 필드는 채워 넣지 않고 그대로 전달합니다.
func (t *Trader) AccountBalance(ctx context.Context) (map[string]interface{}, error) {
	snapshot, err := t.client.AccountSnapshot(ctx)
	if err != nil {
		t.log.WithError(err).Error("잔고 조회 실패")
		return nil, err
	}

	balance := map[string]interface{}{
		"totalWalletBalance":    snapshot["totalWalletBalance"],
		"availableBalance":      snapshot["availableBalance"],
		"totalUnrealizedProfit": snapshot["totalUnrealizedProfit"],
	}
	return balance, nil
}

// CurrentPrice는 심볼의 현재가를 조회합니다
func (t *Trader) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return 0, err
	}

	ticker, err := t.client.TickerPrice(ctx, sym)
	if err != nil {
		t.log.WithError(err).WithField("symbol", sym).Error("시세 조회 실패")
		return 0, err
	}

	price, err := rawFloat(ticker["price"])
	if err != nil {
		return 0, fmt.Errorf("시세 응답 파싱 실패 [심볼: %s]: %w", sym, err)
	}

	return price, nil
}

// PositionInfo는 보유량이 0이 아닌 포지션만 반환합니다.
// symbol이 비어 있으면 전체 심볼을 조회합니다.
func (t *Trader) PositionInfo(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	sym := ""
	if symbol != "" {
		s, err := validate.Symbol(symbol)
		if err != nil {
			return nil, err
		}
		sym = s
	}

	positions, err := t.client.Positions(ctx, sym)
	if err != nil {
		t.log.WithError(err).Error("포지션 조회 실패")
		return nil, err
	}

	active := make([]map[string]interface{}, 0, len(positions))
	for _, p := range positions {
		amt, err := rawFloat(p["positionAmt"])
		if err != nil {
			return nil, fmt.Errorf("포지션 수량 파싱 실패: %w", err)
		}
		if amt == 0 {
			continue
		}
		active = append(active, p)
	}

	return active, nil
}

// OpenOrders는 미체결 주문 목록을 조회합니다.
// symbol이 비어 있으면 전체 심볼을 조회합니다.
func (t *Trader) OpenOrders(ctx context.Context, symbol string) ([]map[string]interface{}, error) {
	sym := ""
	if symbol != "" {
		s, err := validate.Symbol(symbol)
		if err != nil {
			return nil, err
		}
		sym = s
	}

	orders, err := t.client.OpenOrders(ctx, sym)
	if err != nil {
		t.log.WithError(err).Error("미체결 주문 조회 실패")
		return nil, err
	}

	return orders, nil
}

// SetLeverage는 심볼의 레버리지를 변경합니다.
// leverage는 문자열과 숫자 표현을 모두 허용합니다.
func (t *Trader) SetLeverage(ctx context.Context, symbol string, leverage interface{}) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, err
	}
	lev, err := validate.Leverage(leverage)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.ChangeLeverage(ctx, sym, lev)
	if err != nil {
		t.log.WithError(err).WithField("symbol", sym).Error("레버리지 설정 실패")
		return nil, err
	}

	t.log.WithFields(logrus.Fields{
		"symbol":   sym,
		"leverage": lev,
	}).Info("레버리지 변경 완료")

	return resp, nil
}

// PlaceMarketOrder는 시장가 주문을 접수합니다.
// quantity는 문자열과 숫자 표현을 모두 허용합니다.
func (t *Trader) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity interface{}, reduceOnly bool) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, t.rejected(err)
	}
	sd, err := validate.Side(side)
	if err != nil {
		return nil, t.rejected(err)
	}
	qty, err := validate.Quantity(quantity, t.minQty, t.maxQty)
	if err != nil {
		return nil, t.rejected(err)
	}

	return t.submitOrder(ctx, order.NewMarket(sym, sd, qty, reduceOnly))
}

// PlaceLimitOrder는 지정가 주문을 접수합니다.
// tif가 비어 있으면 GTC를 사용합니다.
func (t *Trader) PlaceLimitOrder(ctx context.Context, symbol, side string, quantity, price interface{}, tif string, reduceOnly bool) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, t.rejected(err)
	}
	sd, err := validate.Side(side)
	if err != nil {
		return nil, t.rejected(err)
	}
	qty, err := validate.Quantity(quantity, t.minQty, t.maxQty)
	if err != nil {
		return nil, t.rejected(err)
	}
	prc, err := validate.Price(price)
	if err != nil {
		return nil, t.rejected(err)
	}
	if tif == "" {
		tif = string(domain.DefaultTimeInForce)
	}
	tf, err := validate.TimeInForce(tif)
	if err != nil {
		return nil, t.rejected(err)
	}

	return t.submitOrder(ctx, order.NewLimit(sym, sd, qty, prc, tf, reduceOnly))
}

// PlaceStopMarketOrder는 스탑 시장가 주문을 접수합니다
func (t *Trader) PlaceStopMarketOrder(ctx context.Context, symbol, side string, quantity, stopPrice interface{}, reduceOnly bool) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, t.rejected(err)
	}
	sd, err := validate.Side(side)
	if err != nil {
		return nil, t.rejected(err)
	}
	qty, err := validate.Quantity(quantity, t.minQty, t.maxQty)
	if err != nil {
		return nil, t.rejected(err)
	}
	stp, err := validate.Price(stopPrice)
	if err != nil {
		return nil, t.rejected(err)
	}

	return t.submitOrder(ctx, order.NewStopMarket(sym, sd, qty, stp, reduceOnly))
}

// PlaceStopLimitOrder는 스탑 지정가 주문을 접수합니다.
// tif가 비어 있으면 GTC를 사용합니다.
func (t *Trader) PlaceStopLimitOrder(ctx context.Context, symbol, side string, quantity, price, stopPrice interface{}, tif string, reduceOnly bool) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, t.rejected(err)
	}
	sd, err := validate.Side(side)
	if err != nil {
		return nil, t.rejected(err)
	}
	qty, err := validate.Quantity(quantity, t.minQty, t.maxQty)
	if err != nil {
		return nil, t.rejected(err)
	}
	prc, err := validate.Price(price)
	if err != nil {
		return nil, t.rejected(err)
	}
	stp, err := validate.Price(stopPrice)
	if err != nil {
		return nil, t.rejected(err)
	}
	if tif == "" {
		tif = string(domain.DefaultTimeInForce)
	}
	tf, err := validate.TimeInForce(tif)
	if err != nil {
		return nil, t.rejected(err)
	}

	return t.submitOrder(ctx, order.NewStopLimit(sym, sd, qty, prc, stp, tf, reduceOnly))
}

// CancelOrder는 미체결 주문을 취소합니다.
// 주문 ID는 거래소가 발급한 값이므로 검증 없이 그대로 전달합니다.
func (t *Trader) CancelOrder(ctx context.Context, symbol string, orderID int64) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.CancelOrder(ctx, sym, orderID)
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"symbol":  sym,
			"orderId": orderID,
		}).Error("주문 취소 실패")
		return nil, err
	}

	t.log.WithFields(logrus.Fields{
		"symbol":  sym,
		"orderId": orderID,
	}).Info("주문 취소 완료")

	return resp, nil
}

// ClosePosition은 심볼의 포지션 전량을 시장가로 청산합니다.
// 포지션이 없으면 주문 경로를 타지 않고 상태 결과만 반환합니다.
// 롱 포지션은 SELL, 숏 포지션은 BUY로 청산하며 수량은 보유량의 절대값입니다.
func (t *Trader) ClosePosition(ctx context.Context, symbol string) (map[string]interface{}, error) {
	sym, err := validate.Symbol(symbol)
	if err != nil {
		return nil, err
	}

	positions, err := t.PositionInfo(ctx, sym)
	if err != nil {
		return nil, err
	}

	if len(positions) == 0 {
		t.countNoPosition()
		t.log.WithField("symbol", sym).Info("청산할 포지션 없음")
		return map[string]interface{}{"status": domain.StatusNoPosition}, nil
	}

	amt, err := rawFloat(positions[0]["positionAmt"])
	if err != nil {
		return nil, fmt.Errorf("포지션 수량 파싱 실패 [심볼: %s]: %w", sym, err)
	}

	// 롱이면 매도, 숏이면 매수로 닫는다
	side := domain.Sell
	if amt < 0 {
		side = domain.Buy
	}
	quantity := math.Abs(amt)

	t.log.WithFields(logrus.Fields{
		"symbol":   sym,
		"side":     string(side),
		"quantity": quantity,
	}).Info("포지션 청산 주문")

	return t.PlaceMarketOrder(ctx, sym, string(side), quantity, true)
}

// submitOrder는 조립된 주문을 전송하고 결과를 기록합니다.
// 표시용으로 정리한 응답은 감사 로그에만 쓰고 호출자에게는 원본을 돌려줍니다.
func (t *Trader) submitOrder(ctx context.Context, req order.Request) (map[string]interface{}, error) {
	resp, err := t.client.CreateOrder(ctx, req)
	if err != nil {
		t.countFailure(metrics.StageTransport)
		t.log.WithError(err).WithFields(logrus.Fields{
			"symbol": req.Symbol,
			"type":   string(req.Type),
		}).Error("주문 전송 실패")
		return nil, err
	}

	t.countOrder(req.Type)

	formatted := order.FormatResponse(resp)
	t.log.WithFields(logrus.Fields(formatted)).Info("주문 접수 완료")

	t.notifyOrder(req, resp)

	return resp, nil
}

// notifyOrder는 주문 접수 알림을 전송합니다.
// 알림 실패는 기록만 하고 주문 결과에는 영향을 주지 않습니다.
func (t *Trader) notifyOrder(req order.Request, resp map[string]interface{}) {
	if t.notifier == nil {
		return
	}

	event := notification.OrderEvent{
		Symbol:   req.Symbol,
		Side:     string(req.Side),
		Type:     string(req.Type),
		Quantity: req.Quantity,
		Price:    req.Price,
		Status:   stringField(resp, "status"),
		OrderID:  stringField(resp, "orderId"),
	}

	if err := t.notifier.SendOrder(event); err != nil {
		t.log.WithError(err).Warn("주문 알림 전송 실패")
	}
}

// rejected는 검증 실패를 기록하고 에러를 그대로 돌려줍니다
func (t *Trader) rejected(err error) error {
	t.countFailure(metrics.StageValidation)
	t.log.WithError(err).Warn("주문 입력 거부")
	return err
}

func (t *Trader) countOrder(orderType domain.OrderType) {
	if t.metrics != nil {
		t.metrics.OrdersPlaced.WithLabelValues(string(orderType)).Inc()
	}
}

func (t *Trader) countFailure(stage string) {
	if t.metrics != nil {
		t.metrics.OrderFailures.WithLabelValues(stage).Inc()
	}
}

func (t *Trader) countNoPosition() {
	if t.metrics != nil {
		t.metrics.CloseNoPosition.Inc()
	}
}

// stringField는 원본 매핑의 값을 표시용 문자열로 변환합니다
func stringField(raw map[string]interface{}, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// rawFloat은 원본 매핑의 수치 값을 float64로 변환합니다.
// 바이낸스는 수치 필드 대부분을 문자열로 내려줍니다.
func rawFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseFloat(n, 64)
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case nil:
		return 0, fmt.Errorf("값이 없음")
	default:
		return 0, fmt.Errorf("숫자로 해석할 수 없는 타입: %T", v)
	}
}
