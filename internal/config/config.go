package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// 바이낸스 API 설정
	Binance struct {
		APIKey     string        `envconfig:"BINANCE_API_KEY" required:"true"`
		SecretKey  string        `envconfig:"BINANCE_API_SECRET" required:"true"`
		UseTestnet bool          `envconfig:"TESTNET" default:"true"`
		RecvWindow int           `envconfig:"RECV_WINDOW" default:"5000"`
		Timeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	}

	// 거래 설정
	Trading struct {
		MinQuantity float64 `envconfig:"MIN_QUANTITY" default:"0.001"`
		MaxQuantity float64 `envconfig:"MAX_QUANTITY" default:"1000"`
	}

	// 로그 설정
	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
		File  string `envconfig:"LOG_FILE"`
	}

	// 대시보드 설정
	Dashboard struct {
		Addr             string        `envconfig:"DASHBOARD_ADDR" default:":5000"`
		TimeSyncInterval time.Duration `envconfig:"TIME_SYNC_INTERVAL" default:"1h"`
	}

	// 디스코드 알림 설정 (웹훅이 비어 있으면 알림을 보내지 않습니다)
	Notification struct {
		TradeWebhook string `envconfig:"DISCORD_TRADE_WEBHOOK"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	// 환경변수가 빈 값으로 설정된 경우도 자격 증명 누락으로 취급합니다
	if cfg.Binance.APIKey == "" || cfg.Binance.SecretKey == "" {
		return fmt.Errorf("BINANCE_API_KEY와 BINANCE_API_SECRET은 필수입니다")
	}

	if cfg.Trading.MinQuantity <= 0 {
		return fmt.Errorf("MIN_QUANTITY는 0보다 커야 합니다")
	}

	if cfg.Trading.MaxQuantity < cfg.Trading.MinQuantity {
		return fmt.Errorf("MAX_QUANTITY는 MIN_QUANTITY 이상이어야 합니다")
	}

	if cfg.Binance.RecvWindow <= 0 || cfg.Binance.RecvWindow > 60000 {
		return fmt.Errorf("RECV_WINDOW는 1 이상 60000 이하여야 합니다")
	}

	if cfg.Dashboard.TimeSyncInterval < time.Minute {
		return fmt.Errorf("TIME_SYNC_INTERVAL은 1분 이상이어야 합니다")
	}

	return nil
}

// LoadConfig는 .env 파일과 환경변수에서 설정을 로드합니다.
// envFile이 비어 있으면 기본 경로(.env)를 사용하며, 기본 경로 파일이 없는 것은 에러가 아닙니다.
// API 키/시크릿 누락은 프로세스 시작 실패로 이어집니다.
func LoadConfig(envFile string) (*Config, error) {
	// .env 파일 로드
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
	}

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
