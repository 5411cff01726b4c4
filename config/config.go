package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ian-kent/gofigure"
)

// DefaultAPIBase is the public Paystack API endpoint
const DefaultAPIBase = "https://api.paystack.co"

// SecretKeyEnv names the environment variable holding the Paystack secret key
const SecretKeyEnv = "PAYSTACK_SECRET_KEY"

// ErrMissingSecretKey is returned when PAYSTACK_SECRET_KEY is not set
var ErrMissingSecretKey = errors.New("environment variable PAYSTACK_SECRET_KEY is not set")

// Config holds application configuration
type Config struct {
	gofigure              interface{} `order:"env,flag"`
	ServiceName           string      `env:"SERVICE_NAME"               flag:"service-name"        flagDesc:"Service name reported in logs and telemetry" validate:"required"`
	Host                  string      `env:"HOST"                       flag:"host"                flagDesc:"Host to bind to"`
	Port                  int         `env:"PORT"                       flag:"port"                flagDesc:"Port to listen on"                           validate:"gt=0,lte=65535"`
	BaseURL               string      `env:"MCP_BASE_URL"               flag:"base-url"            flagDesc:"Absolute URL prefix for the SSE message endpoint; empty sends a relative path" validate:"omitempty,url"`
	PaystackSecretKey     string      `validate:"required"`
	PaystackAPIBase       string      `env:"PAYSTACK_API_BASE"          flag:"paystack-api-base"   flagDesc:"Base URL for the Paystack API"               validate:"required,url"`
	RequestTimeoutSeconds int         `env:"PAYSTACK_TIMEOUT_SECONDS"   flag:"paystack-timeout"    flagDesc:"Timeout for Paystack API calls in seconds"   validate:"gt=0"`
	OTELEndpoint          string      `env:"OTEL_EXPORTER_OTLP_ENDPOINT" flag:"otel-endpoint"      flagDesc:"OTLP gRPC collector endpoint"`
	TelemetryEnabled      bool        `env:"OTEL_ENABLED"               flag:"otel-enabled"        flagDesc:"Export traces, metrics and logs over OTLP"`
	Debug                 bool        `env:"DEBUG"                      flag:"debug"               flagDesc:"Run gin in debug mode"`
}

// Default returns a Config populated with default values
func Default() *Config {
	return &Config{
		ServiceName:           "paystack-mcp-server",
		Host:                  "0.0.0.0",
		Port:                  8080,
		PaystackAPIBase:       DefaultAPIBase,
		RequestTimeoutSeconds: 30,
		OTELEndpoint:          "localhost:4317",
		TelemetryEnabled:      true,
	}
}

var cfg *Config

// Get loads configuration from environment variables and flags, then validates it
func Get() (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	c := Default()
	if err := gofigure.Gofigure(c); err != nil {
		return nil, err
	}
	loadSecrets(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg = c
	return cfg, nil
}

// loadSecrets reads credentials from the environment only, keeping them off the command line
func loadSecrets(c *Config) {
	c.PaystackSecretKey = os.Getenv(SecretKeyEnv)
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		if fe.StructField() == "PaystackSecretKey" {
			return ErrMissingSecretKey
		}
	}

	fe := verrs[0]
	return fmt.Errorf("invalid configuration: %s failed %q check (value %v)", fe.StructField(), fe.Tag(), fe.Value())
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RequestTimeout returns the outbound request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
