package tracing

import "time"

const (
	reconnectionPeriod = 30 * time.Second
	batchTimeout       = 30 * time.Second
	maxQueueSize       = 10000
	maxExportBatchSize = 1024
)

// Config holds the tracing setup, typically loaded from the application's
// YAML configuration.
type Config struct {
	// Disable turns tracing off entirely. No spans are collected or exported.
	Disable bool `yaml:"disable" default:"false"`

	// SampleRate is the trace sampling fraction between 0.0 (nothing)
	// and 1.0 (everything).
	SampleRate float64 `yaml:"sample_rate" default:"1"`

	// ExporterHost is the hostname or IP address of the OTLP collector.
	ExporterHost string `yaml:"exporter_host" validate:"required"`

	// ExporterPort is the port number of the OTLP collector.
	ExporterPort int `yaml:"exporter_port" validate:"required"`

	// Tags are added as resource attributes to every span.
	Tags map[string]string `yaml:"tags"`
}
