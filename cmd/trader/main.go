package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/assist-by/kestrel/internal/config"
	"github.com/assist-by/kestrel/internal/exchange/binance"
	"github.com/assist-by/kestrel/internal/logger"
	"github.com/assist-by/kestrel/internal/notification/discord"
	"github.com/assist-by/kestrel/internal/trading"
)

// 터미널 출력 색상
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	app := cli.NewApp()
	app.Name = "kestrel"
	app.Usage = "Binance USDS-M futures manual trading console"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env, e",
			Usage: "path to .env file",
		},
		cli.BoolFlag{
			Name:  "yes, y",
			Usage: "skip order confirmation prompts",
		},
	}

	app.Commands = []cli.Command{
		balanceCommand(),
		priceCommand(),
		positionsCommand(),
		setLeverageCommand(),
		marketCommand(),
		limitCommand(),
		stopMarketCommand(),
		stopLimitCommand(),
		ordersCommand(),
		cancelCommand(),
		closeCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// buildTrader는 설정을 읽고 게이트웨이를 조립합니다.
// 서명된 호출에 앞서 거래소 서버와 시간을 동기화합니다.
func buildTrader(ctx context.Context, c *cli.Context) (*trading.Trader, error) {
	cfg, err := config.LoadConfig(c.GlobalString("env"))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}

	client := binance.NewClient(
		cfg.Binance.APIKey,
		cfg.Binance.SecretKey,
		binance.WithTestnet(cfg.Binance.UseTestnet),
		binance.WithTimeout(cfg.Binance.Timeout),
		binance.WithRecvWindow(cfg.Binance.RecvWindow),
		binance.WithLogger(log),
	)

	if err := client.SyncTime(ctx); err != nil {
		return nil, fmt.Errorf("서버 시간 동기화 실패: %w", err)
	}

	if cfg.Binance.UseTestnet {
		log.Info("테스트넷 모드로 실행 중입니다. 실제 자산은 사용되지 않습니다.")
	} else {
		log.Warn("메인넷 모드로 실행 중입니다. 실제 자산이 사용됩니다!")
	}

	opts := []trading.Option{
		trading.WithLogger(log),
		trading.WithQuantityBounds(cfg.Trading.MinQuantity, cfg.Trading.MaxQuantity),
	}
	if cfg.Notification.TradeWebhook != "" {
		opts = append(opts, trading.WithNotifier(discord.NewClient(cfg.Notification.TradeWebhook)))
	}

	trader := trading.New(client, opts...)

	// 명령 실행 전에 연결과 계정 접근을 확인합니다
	if err := trader.CheckConnection(ctx); err != nil {
		return nil, err
	}

	return trader, nil
}

// fail은 에러를 강조색으로 출력하고 종료 코드 1을 반환합니다
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
	return cli.NewExitError("", 1)
}

func printHeader(title string) {
	fmt.Printf("%s\n=== %s ===%s\n", colorCyan, title, colorReset)
}

func printSuccess(format string, args ...interface{}) {
	fmt.Printf("%s"+format+"%s\n", append(append([]interface{}{colorGreen}, args...), colorReset)...)
}

func printWarn(format string, args ...interface{}) {
	fmt.Printf("%s"+format+"%s\n", append(append([]interface{}{colorYellow}, args...), colorReset)...)
}

// confirm은 y/N 프롬프트로 사용자 확인을 받습니다.
// --yes 플래그가 켜져 있으면 묻지 않고 진행합니다.
func confirm(c *cli.Context, prompt string) bool {
	if c.GlobalBool("yes") {
		return true
	}

	fmt.Printf("\n%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printOrderReceipt는 접수된 주문의 ID와 상태를 출력합니다
func printOrderReceipt(resp map[string]interface{}) {
	fmt.Printf("Order ID: %v\n", resp["orderId"])
	fmt.Printf("Status: %v\n", resp["status"])
}
