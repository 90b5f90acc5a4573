package trainer

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/hub"
	"github.com/tunelab/tune/pkg/logging"
	"github.com/tunelab/tune/pkg/vcs"
)

type orchestratorParams struct {
	fx.In

	AnotherLogger logging.Interface `name:"another_log"`
	Fs            afero.Fs
	Hub           *hub.Client
}

// Module provides the trainer Orchestrator wired to the engine sidecar, the
// hub client, and a git client authenticated with the hub token.
var Module = fx.Provide(
	func(v *viper.Viper, params orchestratorParams) (*Orchestrator, error) {
		config, err := NewTrainerConfig(
			WithViper(v),
			WithAnotherLog(params.AnotherLogger),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating trainer config: %w", err)
		}

		return NewOrchestrator(config, Deps{
			Fs:       params.Fs,
			Engine:   NewEngineClient(config.Engine),
			Resolver: params.Hub,
			Repos:    params.Hub,
			Cloner:   vcs.NewClient(params.Hub.Token(), params.AnotherLogger),
		})
	})
