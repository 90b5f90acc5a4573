// Package hub is a client for the model hub: it resolves pretrained models
// (model card plus config.json) and creates repositories for publishing.
package hub

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/tunelab/tune/pkg/logging"
)

// ConfigKey is the root configuration key (in Viper) for this module.
const ConfigKey = "hub"

const (
	DefaultEndpoint       = "https://huggingface.co"
	DefaultRequestTimeout = 30 * time.Second
	DefaultUserAgent      = "tune-hub-go/1.0"
)

// Config holds the configuration for the hub client.
type Config struct {
	Logger logging.Interface

	Endpoint       string        `mapstructure:"endpoint" validate:"required"`
	Token          string        `mapstructure:"token"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Endpoint:       DefaultEndpoint,
		UserAgent:      DefaultUserAgent,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Option represents a hub configuration option.
type Option func(*Config) error

// Apply applies the given options to the configuration.
func (c *Config) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}

		if err := o(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig builds and returns a new configuration from the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// WithViper reads the configuration from the "hub" viper key. Unset keys keep
// their defaults.
func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		if err := v.UnmarshalKey(ConfigKey, c); err != nil {
			return fmt.Errorf("error unmarshalling hub config: %w", err)
		}
		return nil
	}
}

// WithLogger sets the logger for the configuration.
func WithLogger(logger logging.Interface) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}
