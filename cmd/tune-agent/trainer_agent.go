package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/tunelab/tune/internal/tune-agent/trainer"
	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/hub"
	"github.com/tunelab/tune/pkg/logging"
)

// TrainerAgent implements the AgentModule interface for the fine-tuning
// orchestrator.
type TrainerAgent struct {
	orchestrator *trainer.Orchestrator

	trainOpts trainer.TrainOptions
}

// NewTrainerAgent creates a new trainer agent
func NewTrainerAgent() *TrainerAgent {
	return &TrainerAgent{}
}

// Name returns the name of the agent
func (t *TrainerAgent) Name() string {
	return "trainer"
}

// ShortDescription returns a short description of the agent
func (t *TrainerAgent) ShortDescription() string {
	return "Run Tune Trainer Agent"
}

// LongDescription returns a detailed description of the agent
func (t *TrainerAgent) LongDescription() string {
	return "Tune Trainer Agent fine-tunes a pretrained model for text classification: " +
		"hyperparameter search, retraining with the winning configuration, evaluation on the test split, " +
		"and publishing the artifacts to the model hub."
}

// ConfigureCommand configures the agent command
func (t *TrainerAgent) ConfigureCommand(cmd *cobra.Command) {
	// Default action: search and retrain, then evaluate
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, t, t.Start)
	}

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Run the hyperparameter search and retrain the best configuration",
	}
	trainCmd.Flags().IntVar(&t.trainOpts.Trials, "n-trials", trainer.DefaultTrials, "number of search trials")
	trainCmd.Flags().IntVar(&t.trainOpts.RandomSeed, "random-seed", trainer.DefaultRandomSeed, "random seed for search and training")
	trainCmd.Flags().IntVar(&t.trainOpts.EvalSteps, "eval-steps", trainer.DefaultEvalSteps, "steps between search-time evaluations")
	trainCmd.Flags().BoolVar(&t.trainOpts.ParallelCPU, "parallel-cpu", false, "allow trials to use every available CPU")
	trainCmd.Run = func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, t, func() error {
			_, err := t.orchestrator.Train(context.Background(), t.trainOpts)
			return err
		})
	}
	cmd.AddCommand(trainCmd)

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the retrained model (or the base model) on the test split",
		Run: func(cmd *cobra.Command, args []string) {
			runAgentCommand(cmd, t, func() error {
				_, err := t.orchestrator.Evaluate(context.Background())
				return err
			})
		},
	}
	cmd.AddCommand(evaluateCmd)

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the model card and training artifacts to the model hub",
		Run: func(cmd *cobra.Command, args []string) {
			runAgentCommand(cmd, t, func() error {
				return t.orchestrator.Publish(context.Background())
			})
		},
	}
	cmd.AddCommand(publishCmd)
}

// FxModules returns the fx modules needed by this agent
func (t *TrainerAgent) FxModules() []fx.Option {
	return []fx.Option{
		afero.Module,
		logging.Module,
		logging.ModuleNamed("another_log"),
		hub.Module,
		trainer.Module,
		fx.Populate(&t.orchestrator),
	}
}

// Start starts the agent
func (t *TrainerAgent) Start() error {
	return t.orchestrator.Start(context.Background())
}
