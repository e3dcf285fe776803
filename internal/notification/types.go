package notification

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0099FF // 파란색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error

	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendOrder는 주문 접수 알림을 전송합니다
	SendOrder(event OrderEvent) error
}

// OrderEvent는 주문 알림에 담을 접수 정보를 정의합니다
type OrderEvent struct {
	Symbol   string  // 심볼 (예: BTCUSDT)
	Side     string  // BUY or SELL
	Type     string  // 주문 유형 (예: MARKET)
	Quantity float64 // 주문 수량
	Price    float64 // 지정가 (시장가 주문이면 0)
	Status   string  // 거래소가 돌려준 주문 상태
	OrderID  string  // 거래소가 발급한 주문 ID
}

// GetColorForSide는 주문 방향에 따른 색상을 반환합니다
func GetColorForSide(side string) int {
	switch side {
	case "BUY":
		return ColorSuccess
	case "SELL":
		return ColorError
	default:
		return ColorInfo
	}
}
