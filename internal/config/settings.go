package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the process-wide settings shared by every brand
type Settings struct {
	LogLevel      string         `mapstructure:"log_level"`
	ConfigDir     string         `mapstructure:"config_dir"`
	DefaultSeason string         `mapstructure:"default_season"`
	Title         TitleSettings  `mapstructure:"title"`
	Feishu        FeishuSettings `mapstructure:"feishu"`
	Redis         RedisSettings  `mapstructure:"redis"`
	Ledger        LedgerSettings `mapstructure:"ledger"`
}

// TitleSettings selects the title generator
type TitleSettings struct {
	Provider string `mapstructure:"provider"` // "rule" or "external"
	APIURL   string `mapstructure:"api_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// FeishuSettings holds the Bitable credentials and pacing
type FeishuSettings struct {
	BaseURL       string  `mapstructure:"base_url"`
	AppID         string  `mapstructure:"app_id"`
	AppSecret     string  `mapstructure:"app_secret"`
	AppToken      string  `mapstructure:"app_token"`
	TableID       string  `mapstructure:"table_id"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	BatchSize     int     `mapstructure:"batch_size"`
}

// RedisSettings holds the stream sink connection
type RedisSettings struct {
	Addr      string `mapstructure:"addr"`
	DB        int    `mapstructure:"db"`
	Stream    string `mapstructure:"stream"`
	MaxLength int64  `mapstructure:"max_length"`
}

// LedgerSettings locates the "already synced" ledger
type LedgerSettings struct {
	Path string `mapstructure:"path"`
}

// LoadSettings loads settings from .env, an optional golfwear.yaml and
// GOLFWEAR_* environment variables, in increasing priority.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("golfwear")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("GOLFWEAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("config_dir", "configs")
	v.SetDefault("default_season", "25秋冬")

	v.SetDefault("title.provider", "rule")
	v.SetDefault("title.api_url", "")
	v.SetDefault("title.api_key", "")
	v.SetDefault("title.model", "gpt-4o-mini")

	v.SetDefault("feishu.base_url", "https://open.feishu.cn/open-apis")
	v.SetDefault("feishu.app_id", "")
	v.SetDefault("feishu.app_secret", "")
	v.SetDefault("feishu.app_token", "")
	v.SetDefault("feishu.table_id", "")
	v.SetDefault("feishu.rate_per_second", 5.0)
	v.SetDefault("feishu.batch_size", 100)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "golfwear:records")
	v.SetDefault("redis.max_length", 10000)

	v.SetDefault("ledger.path", "synced.db")
}

// Validate checks cross-field constraints
func (s *Settings) Validate() error {
	switch s.Title.Provider {
	case "rule":
	case "external":
		if s.Title.APIURL == "" {
			return fmt.Errorf("title.api_url is required when title.provider is 'external' (set GOLFWEAR_TITLE_API_URL)")
		}
	default:
		return fmt.Errorf("title.provider must be 'rule' or 'external', got: %s", s.Title.Provider)
	}
	if s.Feishu.BatchSize <= 0 || s.Feishu.BatchSize > 500 {
		return fmt.Errorf("feishu.batch_size must be in [1,500], got: %d", s.Feishu.BatchSize)
	}
	return nil
}

// FeishuReady reports whether the Bitable credentials are all set
func (s *Settings) FeishuReady() error {
	missing := []string{}
	if s.Feishu.AppID == "" {
		missing = append(missing, "GOLFWEAR_FEISHU_APP_ID")
	}
	if s.Feishu.AppSecret == "" {
		missing = append(missing, "GOLFWEAR_FEISHU_APP_SECRET")
	}
	if s.Feishu.AppToken == "" {
		missing = append(missing, "GOLFWEAR_FEISHU_APP_TOKEN")
	}
	if s.Feishu.TableID == "" {
		missing = append(missing, "GOLFWEAR_FEISHU_TABLE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Feishu settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
