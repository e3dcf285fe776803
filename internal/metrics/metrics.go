package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 주문 실패 단계 레이블 값입니다
const (
	StageValidation = "validation"
	StageTransport  = "transport"
)

// Metrics는 게이트웨이와 대시보드가 기록하는 프로메테우스 수집기 묶음입니다
type Metrics struct {
	OrdersPlaced    *prometheus.CounterVec   // 주문 유형별 접수 수
	OrderFailures   *prometheus.CounterVec   // 실패 단계별 주문 실패 수
	CloseNoPosition prometheus.Counter       // 청산 요청 시 포지션이 없었던 횟수
	HTTPRequests    *prometheus.CounterVec   // 대시보드 HTTP 요청 수
	HTTPDuration    *prometheus.HistogramVec // 대시보드 HTTP 처리 시간
}

// New는 수집기를 생성하고 주어진 레지스트리에 등록합니다
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "orders_placed_total",
			Help:      "접수된 주문 수 (주문 유형별)",
		}, []string{"type"}),
		OrderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "order_failures_total",
			Help:      "실패한 주문 수 (실패 단계별)",
		}, []string{"stage"}),
		CloseNoPosition: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "close_no_position_total",
			Help:      "청산할 포지션이 없었던 요청 수",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kestrel",
			Name:      "http_requests_total",
			Help:      "대시보드 HTTP 요청 수",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kestrel",
			Name:      "http_request_duration_seconds",
			Help:      "대시보드 HTTP 요청 처리 시간",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(m.OrdersPlaced, m.OrderFailures, m.CloseNoPosition, m.HTTPRequests, m.HTTPDuration)
	return m
}
