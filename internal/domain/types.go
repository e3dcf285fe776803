package domain

// OrderSide는 주문 방향을 정의합니다
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderType은 주문 유형을 정의합니다
type OrderType string

const (
	Market           OrderType = "MARKET"
	Limit            OrderType = "LIMIT"
	StopMarket       OrderType = "STOP_MARKET"
	StopLimit        OrderType = "STOP_LIMIT"
	TakeProfitMarket OrderType = "TAKE_PROFIT_MARKET"
)

// TimeInForce는 주문 유효 기간 정책을 정의합니다
type TimeInForce string

const (
	GTC TimeInForce = "GTC" // Good Till Cancel
	IOC TimeInForce = "IOC" // Immediate Or Cancel
	FOK TimeInForce = "FOK" // Fill Or Kill
)

// DefaultTimeInForce는 호출자가 유효 기간을 지정하지 않았을 때 사용하는 기본값입니다
const DefaultTimeInForce = GTC

// StatusNoPosition은 청산할 포지션이 없을 때 반환되는 상태 값입니다.
// 에러가 아니라 정보성 결과로 취급합니다.
const StatusNoPosition = "NO_POSITION"

// OrderSides는 허용되는 주문 방향 목록을 반환합니다
func OrderSides() []OrderSide {
	return []OrderSide{Buy, Sell}
}

// OrderTypes는 허용되는 주문 유형 목록을 반환합니다
func OrderTypes() []OrderType {
	return []OrderType{Market, Limit, StopMarket, StopLimit, TakeProfitMarket}
}

// TimeInForces는 허용되는 주문 유효 기간 목록을 반환합니다
func TimeInForces() []TimeInForce {
	return []TimeInForce{GTC, IOC, FOK}
}
