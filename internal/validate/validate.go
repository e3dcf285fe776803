// internal/validate/validate.go
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/assist-by/kestrel/internal/domain"
)

// 수량 검증에 사용하는 기본 범위입니다. 호출자가 범위를 직접 지정할 수 있습니다.
const (
	DefaultMinQuantity = 0.001
	DefaultMaxQuantity = 1000.0
)

// 레버리지 허용 범위입니다
const (
	MinLeverage = 1
	MaxLeverage = 125
)

// quoteSuffix는 심볼의 견적 통화 접미사입니다. USDT 무기한 선물만 다룹니다.
const quoteSuffix = "USDT"

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// Symbol은 심볼 문자열을 정규화하고 검증합니다.
// 앞뒤 공백을 제거하고 대문자로 변환한 뒤, USDT 접미사가 없으면 붙입니다.
// 이미 USDT로 끝나는 심볼에는 다시 붙이지 않으므로 멱등합니다.
func Symbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", newError("symbol", raw, "심볼이 비어 있습니다")
	}
	if !symbolPattern.MatchString(s) {
		return "", newError("symbol", raw, "심볼은 영문자와 숫자만 허용합니다")
	}
	if !strings.HasSuffix(s, quoteSuffix) {
		s += quoteSuffix
	}
	return s, nil
}

// Quantity는 수량을 파싱하고 [minQty, maxQty] 범위를 검증합니다.
// 문자열과 숫자 표현을 모두 허용합니다.
func Quantity(raw interface{}, minQty, maxQty float64) (float64, error) {
	q, err := toFloat(raw)
	if err != nil {
		return 0, newError("quantity", raw, "수량을 숫자로 해석할 수 없습니다")
	}
	if q <= 0 {
		return 0, newError("quantity", raw, "수량은 0보다 커야 합니다")
	}
	if q < minQty {
		return 0, newError("quantity", raw, fmt.Sprintf("수량이 최소값 %v보다 작습니다", minQty))
	}
	if q > maxQty {
		return 0, newError("quantity", raw, fmt.Sprintf("수량이 최대값 %v보다 큽니다", maxQty))
	}
	return q, nil
}

// Price는 가격을 파싱하고 양수인지 검증합니다. 상한은 없습니다.
func Price(raw interface{}) (float64, error) {
	p, err := toFloat(raw)
	if err != nil {
		return 0, newError("price", raw, "가격을 숫자로 해석할 수 없습니다")
	}
	if p <= 0 {
		return 0, newError("price", raw, "가격은 0보다 커야 합니다")
	}
	return p, nil
}

// Side는 주문 방향 문자열을 정규화하고 검증합니다
func Side(raw string) (domain.OrderSide, error) {
	s := domain.OrderSide(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case domain.Buy, domain.Sell:
		return s, nil
	}
	return "", newError("side", raw, "주문 방향은 BUY 또는 SELL만 허용합니다")
}

// TimeInForce는 주문 유효 기간 문자열을 정규화하고 검증합니다.
// 빈 문자열을 기본값으로 대체하지 않으므로 기본값 처리는 호출자의 몫입니다.
func TimeInForce(raw string) (domain.TimeInForce, error) {
	t := domain.TimeInForce(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case domain.GTC, domain.IOC, domain.FOK:
		return t, nil
	}
	return "", newError("timeInForce", raw, "유효 기간은 GTC, IOC, FOK 중 하나여야 합니다")
}

// Leverage는 레버리지를 정수로 파싱하고 허용 범위를 검증합니다.
// 소수부가 있는 값은 정수가 아니므로 거부합니다.
func Leverage(raw interface{}) (int, error) {
	l, err := toInt(raw)
	if err != nil {
		return 0, newError("leverage", raw, "레버리지를 정수로 해석할 수 없습니다")
	}
	if l < MinLeverage || l > MaxLeverage {
		return 0, newError("leverage", raw,
			fmt.Sprintf("레버리지는 %d 이상 %d 이하여야 합니다", MinLeverage, MaxLeverage))
	}
	return l, nil
}

// OrderType은 주문 유형 문자열을 정규화하고 검증합니다.
// 게이트웨이는 호출된 오퍼레이션으로 주문 유형을 정하므로 실제로는
// 외부에서 유형 문자열을 받는 표면에서만 사용됩니다.
func OrderType(raw string) (domain.OrderType, error) {
	t := domain.OrderType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case domain.Market, domain.Limit, domain.StopMarket, domain.StopLimit, domain.TakeProfitMarket:
		return t, nil
	}
	return "", newError("type", raw, "지원하지 않는 주문 유형입니다")
}

// toFloat은 문자열 또는 숫자 형태의 입력을 float64로 변환합니다.
// NaN과 Inf는 유한한 숫자가 아니므로 거부합니다.
func toFloat(raw interface{}) (float64, error) {
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		v = f
	default:
		return 0, fmt.Errorf("지원하지 않는 타입: %T", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("유한한 숫자가 아님: %v", v)
	}
	return v, nil
}

// toInt는 문자열 또는 숫자 형태의 입력을 int로 변환합니다
func toInt(raw interface{}) (int, error) {
	switch t := raw.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return 0, fmt.Errorf("정수가 아님: %v", t)
		}
		return int(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, err
		}
		return i, nil
	default:
		return 0, fmt.Errorf("지원하지 않는 타입: %T", raw)
	}
}
