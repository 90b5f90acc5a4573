package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunelab/tune/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:     "tune-agent",
	Short:   "Run Tune Agent",
	Long:    "Tune Agent fine-tunes pretrained language models for text classification: hyperparameter search, retraining, evaluation and publishing.",
	Version: fmt.Sprintf("gitVersion=%s, gitCommit=%s", version.GitVersion, version.GitCommit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(CreateAgentCommand(NewTrainerAgent()))
}
