package config

import (
	"fmt"
	"time"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	S3        S3Config        `mapstructure:"s3"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Transcode TranscodeConfig `mapstructure:"transcode"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	LogLevel  string          `mapstructure:"log_level"`
}

type APIConfig struct {
	Port           int   `mapstructure:"port" validate:"gt=0,lte=65535"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type WorkerConfig struct {
	MetricsPort int    `mapstructure:"metrics_port" validate:"gt=0,lte=65535"`
	HealthPort  int    `mapstructure:"health_port" validate:"gt=0,lte=65535"`
	TempDir     string `mapstructure:"temp_dir" validate:"required"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket" validate:"required"`
	Region    string `mapstructure:"region" validate:"required"`
	Endpoint  string `mapstructure:"endpoint"` // empty means plain AWS; set for MinIO/R2
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type RabbitMQConfig struct {
	Host       string        `mapstructure:"host" validate:"required"`
	Port       int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	Queue      string        `mapstructure:"queue" validate:"required"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=1"`
	RetryBase  time.Duration `mapstructure:"retry_base" validate:"gt=0"`
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.User, r.Password, r.Host, r.Port)
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" validate:"required"`
}

type RedisConfig struct {
	Addr                string        `mapstructure:"addr" validate:"required"`
	Password            string        `mapstructure:"password"`
	DB                  int           `mapstructure:"db"`
	StatusTTL           time.Duration `mapstructure:"status_ttl"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
}

type TranscodeConfig struct {
	FFmpegPath      string        `mapstructure:"ffmpeg_path" validate:"required"`
	FFprobePath     string        `mapstructure:"ffprobe_path" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	ThumbnailOffset time.Duration `mapstructure:"thumbnail_offset"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}
