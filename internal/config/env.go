package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env       string `envconfig:"ENV" default:"local"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"debug"`
	DebugHost string `envconfig:"DEBUG_HOST" default:""`
	DebugPort string `envconfig:"DEBUG_PORT" default:"3200"`
}

type TelegramEnv struct {
	Token       string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	AdminUserID int64  `envconfig:"ADMIN_USER_ID" required:"true"`
}

type LangGraphEnv struct {
	URL          string        `envconfig:"LANGGRAPH_URL" default:"http://127.0.0.1:2024"`
	APIKey       string        `envconfig:"LANGSMITH_API_KEY"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"120s"`
	SearchLimit  int           `envconfig:"SEARCH_LIMIT" default:"20"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".eaia/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"eaia/"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type Env struct {
	BaseEnv
	TelegramEnv
	LangGraphEnv
	StorageEnv
}

const namespace = "EAIA"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
