package httpserver

import (
	"fmt"
	"time"
)

// Config holds the server's listen address and request limits.
type Config struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required"`

	// ReadTimeout and WriteTimeout bound a single request/response exchange;
	// IdleTimeout bounds the keep-alive wait between requests.
	ReadTimeout  time.Duration `yaml:"read_timeout"  validate:"required" default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"required" default:"5s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  validate:"required" default:"120s"`

	// BodyLimit caps the accepted request body size in bytes. Default 4MB.
	BodyLimit int `yaml:"body_limit" validate:"required" default:"4194304"`
}

// Address returns the listen address in the form "host:port".
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
