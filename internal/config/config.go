package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string        `mapstructure:"ENV"`
	Port               string        `mapstructure:"PORT"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	AdminKey           string        `mapstructure:"ADMIN_KEY"`
	EmbedURL           string        `mapstructure:"EMBED_URL"`
	EmbedDim           int           `mapstructure:"EMBED_DIM"`
	CORSAllowed        string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB    int64         `mapstructure:"MAX_UPLOAD_MB"`
	WindowSize         time.Duration `mapstructure:"WINDOW_SIZE"`
	MinBaselineWindows int           `mapstructure:"MIN_BASELINE_WINDOWS"`
	MaxWindows         int           `mapstructure:"MAX_WINDOWS"`
	AnomalyCacheTTL    time.Duration `mapstructure:"ANOMALY_CACHE_TTL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("EMBED_DIM", 384)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("WINDOW_SIZE", "24h")
	v.SetDefault("MIN_BASELINE_WINDOWS", 3)
	v.SetDefault("MAX_WINDOWS", 10000)
	v.SetDefault("ANOMALY_CACHE_TTL", "5m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
