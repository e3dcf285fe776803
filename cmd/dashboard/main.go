package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"

	"github.com/assist-by/kestrel/internal/config"
	"github.com/assist-by/kestrel/internal/dashboard"
	"github.com/assist-by/kestrel/internal/exchange/binance"
	"github.com/assist-by/kestrel/internal/logger"
	"github.com/assist-by/kestrel/internal/metrics"
	"github.com/assist-by/kestrel/internal/notification/discord"
	"github.com/assist-by/kestrel/internal/scheduler"
	"github.com/assist-by/kestrel/internal/trading"
)

func main() {
	app := cli.NewApp()
	app.Name = "kestrel-dashboard"
	app.Usage = "web dashboard for the kestrel trading console"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env, e",
			Usage: "path to .env file",
		},
		cli.StringFlag{
			Name:  "addr",
			Usage: "listen address (overrides DASHBOARD_ADDR)",
		},
	}

	app.Action = func(c *cli.Context) error {
		if err := run(c.String("env"), c.String("addr")); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel-dashboard: %v\n", err)
			return cli.NewExitError("", 1)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(envFile, addrOverride string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 설정 로드
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	addr := cfg.Dashboard.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	// 로거 초기화
	log, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("로거 초기화 실패: %w", err)
	}

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("대시보드 시작...")

	// 알림 채널 준비 (웹훅이 설정된 경우에만)
	var notifier *discord.Client
	if cfg.Notification.TradeWebhook != "" {
		notifier = discord.NewClient(cfg.Notification.TradeWebhook, discord.WithTimeout(10*time.Second))
		if err := notifier.SendInfo("🚀 kestrel 대시보드가 시작되었습니다."); err != nil {
			log.WithError(err).Warn("시작 알림 전송 실패")
		}
	}

	// 바이낸스 클라이언트 생성
	client := binance.NewClient(
		cfg.Binance.APIKey,
		cfg.Binance.SecretKey,
		binance.WithTestnet(cfg.Binance.UseTestnet),
		binance.WithTimeout(cfg.Binance.Timeout),
		binance.WithRecvWindow(cfg.Binance.RecvWindow),
		binance.WithLogger(log),
	)

	// 바이낸스 서버와 시간 동기화
	if err := client.SyncTime(ctx); err != nil {
		return fmt.Errorf("서버 시간 동기화 실패: %w", err)
	}

	if cfg.Binance.UseTestnet {
		log.Info("테스트넷 모드로 실행 중입니다. 실제 자산은 사용되지 않습니다.")
	} else {
		log.Warn("메인넷 모드로 실행 중입니다. 실제 자산이 사용됩니다!")
	}

	// 지표 수집기와 거래 게이트웨이 조립
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	opts := []trading.Option{
		trading.WithLogger(log),
		trading.WithMetrics(m),
		trading.WithQuantityBounds(cfg.Trading.MinQuantity, cfg.Trading.MaxQuantity),
	}
	if notifier != nil {
		opts = append(opts, trading.WithNotifier(notifier))
	}
	trader := trading.New(client, opts...)

	// 연결과 계정 접근 확인
	if err := trader.CheckConnection(ctx); err != nil {
		return err
	}

	server := dashboard.NewServer(trader,
		dashboard.WithLogger(log),
		dashboard.WithMetrics(registry, m),
	)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	// 주기적 서버 시간 재동기화
	resync := scheduler.NewScheduler(cfg.Dashboard.TimeSyncInterval, scheduler.TaskFunc(client.SyncTime), log)
	go func() {
		if err := resync.Start(ctx); err != nil && err != context.Canceled {
			log.WithError(err).Error("시간 동기화 스케줄러 종료")
		}
	}()

	go func() {
		log.WithField("addr", addr).Info("대시보드 수신 대기")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("서버 실행 실패")
			cancel()
		}
	}()

	// 종료 신호 대기
	sigChan := make(chan os.Signal, 1)
	osSignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("시스템 종료 신호 수신")
	case <-ctx.Done():
	}

	resync.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("서버 강제 종료")
	}

	if notifier != nil {
		if err := notifier.SendInfo("👋 kestrel 대시보드가 정상적으로 종료되었습니다."); err != nil {
			log.WithError(err).Warn("종료 알림 전송 실패")
		}
	}

	log.Info("대시보드 종료")
	return nil
}
