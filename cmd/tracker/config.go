package main

import "time"

type ServiceConfig struct {
	Port      string `env:"PORT" env-default:"8080"`
	SentryDSN string `env:"SENTRY_DSN"`
	PrettyLog bool   `env:"PRETTY_LOG" env-default:"false"`

	MaxRecords      int           `env:"MAX_RECORDS" env-default:"1000"`
	FrameBufferSize int           `env:"FRAME_BUFFER_SIZE" env-default:"300"`
	ReportInterval  time.Duration `env:"REPORT_INTERVAL" env-default:"5s"`
	FrameRate       float64       `env:"FRAME_RATE" env-default:"60"`
}
