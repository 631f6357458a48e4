package config

import (
	"time"

	"github.com/knadh/koanf/v2"
	"golang.org/x/time/rate"

	"github.com/stackmode/fireadmin/transport"
)

// Config is the SDK configuration assembled by Load.
type Config struct {
	Project ProjectConfig `koanf:"project"`
	HTTP    HTTPConfig    `koanf:"http"`
	Log     LogConfig     `koanf:"log"`

	k *koanf.Koanf
}

// ProjectConfig identifies the backing Google Cloud project and the
// credential used to reach it.
type ProjectConfig struct {
	ID               string `koanf:"id"`
	CredentialsFile  string `koanf:"credentialsfile"`
	ServiceAccountID string `koanf:"serviceaccountid" validate:"omitempty,email"`
}

// HTTPConfig controls the outbound HTTP client shared by all services.
type HTTPConfig struct {
	Timeout   time.Duration `koanf:"timeout" validate:"min=0"`
	Retry     RetrySection  `koanf:"retry"`
	RateLimit float64       `koanf:"ratelimit" validate:"min=0"`
	RateBurst int           `koanf:"rateburst" validate:"min=0"`
}

// RetrySection mirrors transport.RetryConfig in configuration form.
type RetrySection struct {
	Disabled      bool          `koanf:"disabled"`
	MaxRetries    int           `koanf:"maxretries" validate:"min=0,max=10"`
	MaxDelay      time.Duration `koanf:"maxdelay" validate:"min=0"`
	BackOffFactor float64       `koanf:"backofffactor" validate:"min=0"`
}

// LogConfig controls SDK diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty"`
}

// TransportConfig translates the HTTP section into the transport layer's
// client configuration.
func (c *Config) TransportConfig() *transport.Config {
	cfg := &transport.Config{
		Timeout:   c.HTTP.Timeout,
		RateLimit: rate.Limit(c.HTTP.RateLimit),
		RateBurst: c.HTTP.RateBurst,
	}
	if !c.HTTP.Retry.Disabled {
		retry := transport.DefaultRetryConfig()
		retry.MaxRetries = c.HTTP.Retry.MaxRetries
		retry.MaxDelay = c.HTTP.Retry.MaxDelay
		retry.BackOffFactor = c.HTTP.Retry.BackOffFactor
		cfg.Retry = retry
	}
	return cfg
}

// Raw exposes the underlying koanf instance for keys outside the typed
// struct, such as service-specific overrides.
func (c *Config) Raw() *koanf.Koanf { return c.k }
