package dashboard

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/kestrel/internal/metrics"
	"github.com/assist-by/kestrel/internal/trading"
)

//go:embed static/index.html
var indexHTML []byte

// Server는 거래 게이트웨이를 JSON API와 웹소켓으로 노출하는 대시보드 서버입니다.
// 요청마다 새로운 상태를 만들지 않으며, 공유 자원은 게이트웨이 하나뿐입니다.
type Server struct {
	trader *trading.Trader
	log    logrus.FieldLogger
	hub    *Hub

	metrics  *metrics.Metrics
	registry *prometheus.Registry

	engine *gin.Engine
}

// Option은 서버 생성 옵션을 정의합니다
type Option func(*Server)

// WithLogger는 서버 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetrics는 지표 수집기와 /metrics로 노출할 레지스트리를 설정합니다
func WithMetrics(reg *prometheus.Registry, m *metrics.Metrics) Option {
	return func(s *Server) {
		s.registry = reg
		s.metrics = m
	}
}

// NewServer는 새로운 대시보드 서버를 생성합니다
func NewServer(trader *trading.Trader, opts ...Option) *Server {
	s := &Server{
		trader: trader,
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(s.log)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.corsMiddleware())
	if s.metrics != nil {
		engine.Use(s.metricsMiddleware())
	}

	s.engine = engine
	s.registerRoutes()

	return s
}

// Handler는 서버의 HTTP 핸들러를 반환합니다
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub는 웹소켓 허브를 반환합니다
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.handleWS)

	if s.registry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	api := s.engine.Group("/api")
	{
		api.GET("/balance", s.handleBalance)
		api.GET("/price/:symbol", s.handlePrice)
		api.GET("/positions", s.handlePositions)
		api.GET("/orders", s.handleOrders)
		api.POST("/leverage", s.handleLeverage)
		api.POST("/order/market", s.handleMarketOrder)
		api.POST("/order/limit", s.handleLimitOrder)
		api.POST("/order/stop-market", s.handleStopMarketOrder)
		api.POST("/order/stop-limit", s.handleStopLimitOrder)
		api.POST("/order/cancel", s.handleCancelOrder)
		api.POST("/position/close", s.handleClosePosition)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWS(c *gin.Context) {
	if err := s.hub.HandleWS(c.Writer, c.Request); err != nil {
		s.log.WithError(err).Error("웹소켓 업그레이드 실패")
	}
}
