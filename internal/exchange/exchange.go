// internal/exchange/exchange.go
package exchange

import (
	"context"

	"github.com/assist-by/kestrel/internal/order"
)

// Client는 거래소와의 상호작용을 위한 인터페이스입니다.
// 조회 결과와 주문 응답은 디코딩한 원본 매핑 그대로 반환합니다.
// 포매터와 잔고 조회가 키 존재 여부에 의존하므로 구조체로 좁히지 않습니다.
type Client interface {
	// 연결 확인과 시간 동기화
	Ping(ctx context.Context) error
	SyncTime(ctx context.Context) error

	// 계정/시장 데이터 조회
	AccountSnapshot(ctx context.Context) (map[string]interface{}, error)
	TickerPrice(ctx context.Context, symbol string) (map[string]interface{}, error)
	Positions(ctx context.Context, symbol string) ([]map[string]interface{}, error)
	OpenOrders(ctx context.Context, symbol string) ([]map[string]interface{}, error)

	// 거래 기능
	CreateOrder(ctx context.Context, req order.Request) (map[string]interface{}, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) (map[string]interface{}, error)

	// 설정 기능
	ChangeLeverage(ctx context.Context, symbol string, leverage int) (map[string]interface{}, error)
}
