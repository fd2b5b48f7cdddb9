package config

import "github.com/kelseyhightower/envconfig"

type AdminConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	// notification API
	NotifyAPIBaseURL string `envconfig:"NOTIFY_API_BASE_URL" required:"true"`
	NotifyAPIKey     string `envconfig:"NOTIFY_API_KEY" required:"true"`

	// template preview service (letters)
	TemplatePreviewBaseURL string `envconfig:"TEMPLATE_PREVIEW_BASE_URL"`
	TemplatePreviewAPIKey  string `envconfig:"TEMPLATE_PREVIEW_API_KEY"`

	// sessions: "memory" or "postgres"
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionDSN     string `envconfig:"SESSION_DSN"`
	SessionTTL     int    `envconfig:"SESSION_TTL_SECONDS" default:"28800"`

	// AWS / S3 upload bucket / SQS events queue
	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	UploadBucket       string `envconfig:"UPLOAD_BUCKET" required:"true"`
	EventsQueueURL     string `envconfig:"EVENTS_QUEUE_URL"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`

	// validation limits
	MaxUploadRows   int     `envconfig:"MAX_UPLOAD_ROWS" default:"50000"`
	PreviewRows     int     `envconfig:"PREVIEW_ROWS" default:"50"`
	MaxUploadBytes  int64   `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	EventsPerSecond float64 `envconfig:"EVENTS_PER_SECOND" default:"10"`
	EventsBurst     int     `envconfig:"EVENTS_BURST" default:"20"`
}

func LoadAdmin() AdminConfig {
	var cfg AdminConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
