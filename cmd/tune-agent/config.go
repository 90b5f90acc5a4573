package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/tunelab/tune/pkg/configutils"
)

// AgentAppName is the environment variable prefix: TUNE_AGENT_<KEY>.
const AgentAppName = "TUNE_AGENT"

func configProvider(cli *cobra.Command) fx.Option {
	flags := cli.Flags()
	if flags.Lookup("debug") == nil {
		// subcommands inherit the common flags from the agent command
		flags = cli.InheritedFlags()
	}
	return configutils.ProvideViperFromFile(AgentAppName, flags, configFilePath)
}
