package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	// Engine — движок по умолчанию: tesseract | gemini | openai | yandex.
	Engine string `mapstructure:"engine"`
	// Languages — набор языков по умолчанию, "eng+ben".
	Languages      string `mapstructure:"languages"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`
	YCOAuthToken string `mapstructure:"yc_oauth_token"`
	YCFolderID   string `mapstructure:"yc_folder_id"`

	DatabaseURL string `mapstructure:"database_url"`
	// HistoryRetention — сколько хранить журнал вызовов; 0 — не чистить.
	HistoryRetention time.Duration `mapstructure:"history_retention"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	WebhookURL       string `mapstructure:"webhook_url"`
}

// envKeys — ключ конфига → переменная окружения.
var envKeys = map[string]string{
	"port":               "PORT",
	"engine":             "OCR_ENGINE",
	"languages":          "OCR_LANGUAGES",
	"tessdata_prefix":    "TESSDATA_PREFIX",
	"gemini_api_key":     "GEMINI_API_KEY",
	"gemini_model":       "GEMINI_MODEL",
	"openai_api_key":     "OPENAI_API_KEY",
	"openai_model":       "OPENAI_MODEL",
	"yc_oauth_token":     "YC_OAUTH_TOKEN",
	"yc_folder_id":       "YC_FOLDER_ID",
	"database_url":       "DATABASE_URL",
	"history_retention":  "OCR_HISTORY_RETENTION",
	"telegram_bot_token": "TELEGRAM_BOT_TOKEN",
	"webhook_url":        "WEBHOOK_URL",
}

var defaults = map[string]string{
	"port":         "8000",
	"engine":       "tesseract",
	"languages":    "eng+ben",
	"gemini_model": "gemini-2.5-flash",
	"openai_model": "gpt-4o-mini",

	"history_retention": "720h",
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load читает окружение; если OCR_CONFIG указывает на yaml-файл, он
// подкладывается под переменные окружения (env важнее файла).
func Load() *Config {
	cfg, err := LoadFrom(getEnv("OCR_CONFIG", ""))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	for k, env := range envKeys {
		if err := v.BindEnv(k, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.Engine = strings.ToLower(strings.TrimSpace(cfg.Engine))
	if cfg.HistoryRetention < 0 {
		return nil, fmt.Errorf("%s must not be negative", envKeys["history_retention"])
	}
	return &cfg, nil
}

// MustTelegram — для бота токен обязателен.
func (c *Config) MustTelegram() {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		log.Fatalf("missing required env %s", envKeys["telegram_bot_token"])
	}
}
