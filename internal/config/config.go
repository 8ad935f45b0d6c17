package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all NightWatcher configuration loaded from environment variables.
type Config struct {
	DBPath           string `envconfig:"NW_DB_PATH" default:"./data/nightwatcher.sqlite"`
	Port             int    `envconfig:"NW_PORT" default:"8080"`
	LogLevel         string `envconfig:"NW_LOG_LEVEL" default:"info"`
	LogDir           string `envconfig:"NW_LOG_DIR" default:"./logs"`
	EtherscanAPIKey  string `envconfig:"NW_ETHERSCAN_API_KEY"`
	EthRPCURL        string `envconfig:"NW_ETH_RPC_URL"`
	TelegramBotToken string `envconfig:"NW_TELEGRAM_BOT_TOKEN" required:"true"`
	MoralisAPIKey    string `envconfig:"NW_MORALIS_API_KEY"`
	KafkaBroker      string `envconfig:"NW_KAFKA_BROKER"`
	KafkaTopic       string `envconfig:"NW_KAFKA_TOPIC" default:"balance-changes"`
}

// Load reads configuration from .env file (if present) then from environment variables.
func Load() (*Config, error) {
	envFiles := []string{".env"}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				slog.Warn("failed to load .env file", "file", f, "error", err)
			} else {
				slog.Info("loaded .env file", "file", f)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid config: port must be 1-65535, got %d", c.Port)
	}
	if c.KafkaBroker != "" && c.KafkaTopic == "" {
		return fmt.Errorf("invalid config: NW_KAFKA_TOPIC must be set when NW_KAFKA_BROKER is set")
	}
	return nil
}
