package hub

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/tunelab/tune/pkg/logging"
)

// Module provides a hub *Client configured from the "hub" viper key.
var Module = fx.Provide(
	func(v *viper.Viper, logger logging.Interface) (*Client, error) {
		config, err := NewConfig(
			WithViper(v),
			WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating hub config: %w", err)
		}
		return NewClient(config)
	})
