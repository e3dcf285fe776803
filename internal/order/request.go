// internal/order/request.go
package order

import (
	"net/url"
	"strconv"

	"github.com/assist-by/kestrel/internal/domain"
)

// Request는 거래소로 전송할 주문 요청 값입니다.
// 주문 유형별 팩토리 함수로만 생성하며 생성 후에는 변경하지 않습니다.
// 비즈니스 규칙 검증은 하지 않습니다. 호출자가 검증을 마친 값을 전달해야 합니다.
type Request struct {
	Symbol        string
	Side          domain.OrderSide
	Type          domain.OrderType
	Quantity      float64
	Price         float64
	StopPrice     float64
	TimeInForce   domain.TimeInForce
	ReduceOnly    bool
	ClosePosition bool
}

// NewMarket은 시장가 주문 요청을 생성합니다
func NewMarket(symbol string, side domain.OrderSide, quantity float64, reduceOnly bool) Request {
	return Request{
		Symbol:     symbol,
		Side:       side,
		Type:       domain.Market,
		Quantity:   quantity,
		ReduceOnly: reduceOnly,
	}
}

// NewLimit은 지정가 주문 요청을 생성합니다
func NewLimit(symbol string, side domain.OrderSide, quantity, price float64, tif domain.TimeInForce, reduceOnly bool) Request {
	return Request{
		Symbol:      symbol,
		Side:        side,
		Type:        domain.Limit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: tif,
		ReduceOnly:  reduceOnly,
	}
}

// NewStopMarket은 스탑 시장가 주문 요청을 생성합니다
func NewStopMarket(symbol string, side domain.OrderSide, quantity, stopPrice float64, reduceOnly bool) Request {
	return Request{
		Symbol:     symbol,
		Side:       side,
		Type:       domain.StopMarket,
		Quantity:   quantity,
		StopPrice:  stopPrice,
		ReduceOnly: reduceOnly,
	}
}

// NewStopLimit은 스탑 지정가 주문 요청을 생성합니다
func NewStopLimit(symbol string, side domain.OrderSide, quantity, price, stopPrice float64, tif domain.TimeInForce, reduceOnly bool) Request {
	return Request{
		Symbol:      symbol,
		Side:        side,
		Type:        domain.StopLimit,
		Quantity:    quantity,
		Price:       price,
		StopPrice:   stopPrice,
		TimeInForce: tif,
		ReduceOnly:  reduceOnly,
	}
}

// Params는 채워진 필드만 전송 파라미터로 변환합니다.
// reduceOnly와 closePosition은 참일 때만 포함합니다.
// 거래소는 누락된 플래그를 false로 취급하므로 false를 명시하지 않습니다.
func (r Request) Params() url.Values {
	params := url.Values{}
	params.Set("symbol", r.Symbol)
	params.Set("side", string(r.Side))
	params.Set("type", string(r.Type))

	if r.Quantity > 0 {
		params.Set("quantity", formatFloat(r.Quantity))
	}
	if r.Price > 0 {
		params.Set("price", formatFloat(r.Price))
	}
	if r.StopPrice > 0 {
		params.Set("stopPrice", formatFloat(r.StopPrice))
	}
	if r.TimeInForce != "" {
		params.Set("timeInForce", string(r.TimeInForce))
	}
	if r.ReduceOnly {
		params.Set("reduceOnly", "true")
	}
	if r.ClosePosition {
		params.Set("closePosition", "true")
	}
	return params
}

// formatFloat은 지수 표기 없이 필요한 자릿수만 남겨 변환합니다
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
