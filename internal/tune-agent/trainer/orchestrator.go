// Package trainer orchestrates text-classification fine-tuning: it resolves a
// pretrained model from the hub, tokenizes a labeled dataset through the
// training engine, runs a hyperparameter search, retrains the winning
// configuration, evaluates it, and publishes the resulting artifacts.
package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	spfafero "github.com/spf13/afero"

	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/dataset"
	"github.com/tunelab/tune/pkg/hub"
	"github.com/tunelab/tune/pkg/labels"
	"github.com/tunelab/tune/pkg/logging"
	"github.com/tunelab/tune/pkg/metrics"
	"github.com/tunelab/tune/pkg/vcs"
)

// Default search space and schedule, used for any option left unset.
var (
	DefaultLearningRateRange = []float64{1e-6, 1e-4}
	DefaultEpochRange        = []int{1, 6}
	DefaultBatchSizes        = []int{4, 8, 16, 32, 64}
)

const (
	DefaultRandomSeed = 42
	DefaultEvalSteps  = 100
	DefaultTrials     = 10
)

// ModelResolver validates a model id against the hub and returns its
// configuration.
type ModelResolver interface {
	ResolveModel(ctx context.Context, modelID string) (*hub.ModelConfig, error)
}

// RepoCreator creates (or reuses) a hub repository and returns its clone URL.
type RepoCreator interface {
	CreateRepo(ctx context.Context, organization, name string) (string, error)
}

// Deps are the orchestrator's collaborators, injectable for tests.
type Deps struct {
	Fs       spfafero.Fs
	Engine   EngineClient
	Resolver ModelResolver
	Repos    RepoCreator
	Cloner   vcs.Cloner
}

// Orchestrator drives the fine-tuning pipeline. Construct must succeed before
// any of Train, Evaluate, or Publish.
type Orchestrator struct {
	logger logging.Interface
	config *Config
	deps   Deps

	mapping *labels.Mapping
	scorer  metrics.Scorer

	baseConfig       *hub.ModelConfig
	classifierConfig ClassifierConfig
	data             *dataset.Dataset
	tokenized        dataset.Tokenized
	constructed      bool
}

// NewOrchestrator validates the configuration and the label mapping. The
// heavy lifting (model resolution, dataset loading, tokenization) happens in
// Construct so the fx graph builds without network access.
func NewOrchestrator(config *Config, deps Deps) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trainer config: %w", err)
	}
	if deps.Fs == nil || deps.Engine == nil || deps.Resolver == nil {
		return nil, fmt.Errorf("trainer dependencies are incomplete")
	}

	mapping, err := labels.New(config.LabelToID)
	if err != nil {
		return nil, fmt.Errorf("invalid label mapping: %w", err)
	}

	logger := config.AnotherLogger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Orchestrator{
		logger:  logger,
		config:  config,
		deps:    deps,
		mapping: mapping,
		scorer:  metrics.NewScorer(config.MultiLabel, mapping.Size()),
	}, nil
}

// Construct resolves the pretrained model from the hub, builds the classifier
// configuration override, loads the dataset and tokenizes every split. It
// fails fast when the model id does not resolve. Calling it again is a no-op.
func (o *Orchestrator) Construct(ctx context.Context) error {
	if o.constructed {
		return nil
	}

	base, err := o.deps.Resolver.ResolveModel(ctx, o.config.ModelID)
	if err != nil {
		return fmt.Errorf("resolving model %s: %w", o.config.ModelID, err)
	}
	o.baseConfig = base

	o.classifierConfig = ClassifierConfig{
		ModelType:   base.ModelType,
		NumLabels:   o.mapping.Size(),
		ProblemType: o.mapping.ProblemType(o.config.MultiLabel),
		Label2ID:    o.mapping.LabelToID(),
		ID2Label:    o.mapping.IDToLabel(),
	}

	o.logger.WithField("model_id", o.config.ModelID).
		WithField("model_type", base.ModelType).
		WithField("num_labels", o.mapping.Size()).
		WithField("problem_type", o.classifierConfig.ProblemType).
		Info("Resolved pretrained model")

	data, err := dataset.LoadDir(
		o.deps.Fs, o.config.DataDir,
		o.config.DatasetName, o.config.DatasetType,
		o.config.SplitNames(),
	)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	if err := o.validateExamples(data); err != nil {
		return err
	}
	o.data = data

	o.tokenized = make(dataset.Tokenized, len(data.Splits))
	for name, split := range data.Splits {
		tokenizedSplit, err := o.tokenizeSplit(ctx, split)
		if err != nil {
			return fmt.Errorf("tokenizing split %s: %w", name, err)
		}
		o.tokenized[name] = tokenizedSplit
		o.logger.WithField("split", name).WithField("examples", len(tokenizedSplit)).Info("Tokenized split")
	}

	o.constructed = true
	return nil
}

// validateExamples checks every loaded example against the label mapping
// before any engine work: multi-label vectors must be exactly as wide as the
// mapping, single labels must be ids the mapping knows.
func (o *Orchestrator) validateExamples(d *dataset.Dataset) error {
	for name, split := range d.Splits {
		for i, ex := range split {
			if o.config.MultiLabel {
				if len(ex.Labels) != o.mapping.Size() {
					return fmt.Errorf("split %s example %d: labels vector has %d entries, want %d",
						name, i, len(ex.Labels), o.mapping.Size())
				}
				continue
			}
			if _, ok := o.mapping.Name(ex.Label); !ok {
				return fmt.Errorf("split %s example %d: label id %d is not in the label mapping", name, i, ex.Label)
			}
		}
	}
	return nil
}

// tokenizeSplit runs one batched tokenizer call for the whole split and zips
// the labels back onto the tokenized rows, preserving order.
func (o *Orchestrator) tokenizeSplit(ctx context.Context, split dataset.Split) (dataset.TokenizedSplit, error) {
	resp, err := o.deps.Engine.Tokenize(ctx, TokenizeRequest{
		ModelID:     o.config.ModelID,
		Texts:       split.Texts(),
		MaxLength:   o.config.MaxLength,
		Truncation:  true,
		Padding:     "max_length",
		Parallelism: o.config.TokenizerParallelism,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.InputIDs) != len(split) || len(resp.AttentionMask) != len(split) {
		return nil, fmt.Errorf("tokenizer returned %d rows for %d texts", len(resp.InputIDs), len(split))
	}

	out := make(dataset.TokenizedSplit, len(split))
	for i, ex := range split {
		out[i] = dataset.TokenizedExample{
			InputIDs:      resp.InputIDs[i],
			AttentionMask: resp.AttentionMask[i],
			Label:         ex.Label,
			Labels:        ex.Labels,
		}
	}
	return out, nil
}

// TrainOptions tune the hyperparameter search. Zero-valued fields fall back
// to the package defaults.
type TrainOptions struct {
	RandomSeed        int
	EvalSteps         int
	Trials            int
	ParallelCPU       bool
	LearningRateRange []float64
	EpochRange        []int
	BatchSizes        []int
}

// DefaultTrainOptions returns the default search space and schedule.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		RandomSeed:        DefaultRandomSeed,
		EvalSteps:         DefaultEvalSteps,
		Trials:            DefaultTrials,
		LearningRateRange: DefaultLearningRateRange,
		EpochRange:        DefaultEpochRange,
		BatchSizes:        DefaultBatchSizes,
	}
}

func (t *TrainOptions) applyDefaults() {
	if t.RandomSeed == 0 {
		t.RandomSeed = DefaultRandomSeed
	}
	if t.EvalSteps == 0 {
		t.EvalSteps = DefaultEvalSteps
	}
	if t.Trials == 0 {
		t.Trials = DefaultTrials
	}
	if t.LearningRateRange == nil {
		t.LearningRateRange = DefaultLearningRateRange
	}
	if t.EpochRange == nil {
		t.EpochRange = DefaultEpochRange
	}
	if t.BatchSizes == nil {
		t.BatchSizes = DefaultBatchSizes
	}
}

func (t *TrainOptions) validate() error {
	if len(t.LearningRateRange) != 2 {
		return fmt.Errorf("learning rate range must have exactly 2 bounds, got %d", len(t.LearningRateRange))
	}
	if len(t.EpochRange) != 2 {
		return fmt.Errorf("epoch range must have exactly 2 bounds, got %d", len(t.EpochRange))
	}
	if len(t.BatchSizes) == 0 {
		return fmt.Errorf("batch sizes must not be empty")
	}
	return nil
}

// Train runs the hyperparameter search, scores each trial on the validation
// split with micro-F1, persists the winning configuration, and retrains it
// on the training split with periodic evaluation disabled. It returns the
// winning hyperparameters.
func (o *Orchestrator) Train(ctx context.Context, opts TrainOptions) (*Hyperparameters, error) {
	if o.config.OutputDir == "" {
		return nil, fmt.Errorf("output_dir should be specified to persist training artifacts")
	}

	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := o.Construct(ctx); err != nil {
		return nil, err
	}
	if err := o.deps.Fs.MkdirAll(o.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", o.config.OutputDir, err)
	}

	train, err := o.tokenized.Split(o.config.SplitTrain)
	if err != nil {
		return nil, err
	}
	validation, err := o.tokenized.Split(o.config.SplitValidation)
	if err != nil {
		return nil, err
	}

	cpus := 1
	if opts.ParallelCPU {
		cpus = runtime.NumCPU()
	}

	searchID := uuid.NewString()
	o.logger.WithField("search_id", searchID).
		WithField("n_trials", opts.Trials).
		WithField("cpus_per_trial", cpus).
		Info("Starting hyperparameter search")

	resp, err := o.deps.Engine.Search(ctx, SearchRequest{
		SearchID:    searchID,
		ModelID:     o.config.ModelID,
		ModelConfig: o.classifierConfig,
		Train:       train,
		Validation:  validation,
		Space: SearchSpace{
			LearningRateRange: opts.LearningRateRange,
			EpochRange:        opts.EpochRange,
			BatchSizes:        opts.BatchSizes,
		},
		Trials:    opts.Trials,
		EvalSteps: opts.EvalSteps,
		Seed:      opts.RandomSeed,
		Resources: Resources{
			CPUsPerTrial: cpus,
			GPUsPerTrial: o.config.Engine.GPUsPerTrial,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("hyperparameter search: %w", err)
	}
	if len(resp.Trials) == 0 {
		return nil, fmt.Errorf("hyperparameter search returned no trials")
	}

	best := o.selectBestTrial(resp.Trials, validation)
	o.logger.WithField("run_id", best.RunID).
		WithField("learning_rate", best.Hyperparameters.LearningRate).
		WithField("num_train_epochs", best.Hyperparameters.NumTrainEpochs).
		WithField("per_device_train_batch_size", best.Hyperparameters.PerDeviceTrainBatchSize).
		Info("Selected best trial")

	if err := o.saveBestHyperparameters(best.Hyperparameters); err != nil {
		return nil, err
	}

	// Retrain from the same pretrained weights with the winning values. The
	// request is built fresh so the search inputs stay untouched.
	trainResp, err := o.deps.Engine.Train(ctx, TrainRequest{
		ModelID:         o.config.ModelID,
		ModelConfig:     o.classifierConfig,
		Train:           train,
		Hyperparameters: best.Hyperparameters,
		Seed:            opts.RandomSeed,
		SaveDir:         o.config.BestModelPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("retraining best configuration: %w", err)
	}

	o.logger.WithField("saved_path", trainResp.SavedPath).Info("Training finished")
	return &best.Hyperparameters, nil
}

// selectBestTrial scores every trial's validation logits with the search
// objective and returns the highest scorer. Ties keep the earliest trial.
func (o *Orchestrator) selectBestTrial(trials []Trial, validation dataset.TokenizedSplit) Trial {
	best := trials[0]
	bestScore := o.trialObjective(trials[0], validation)
	for _, trial := range trials[1:] {
		score := o.trialObjective(trial, validation)
		if score > bestScore {
			best = trial
			bestScore = score
		}
	}
	o.logger.WithField("objective", bestScore).Info("Scored search trials")
	return best
}

func (o *Orchestrator) trialObjective(trial Trial, validation dataset.TokenizedSplit) float64 {
	return o.scorer.Objective(metrics.EvalPrediction{
		Logits:       trial.Logits,
		ClassIDs:     validation.ClassIDs(),
		LabelVectors: validation.LabelVectors(),
	})
}

func (o *Orchestrator) saveBestHyperparameters(hp Hyperparameters) error {
	data, err := json.MarshalIndent(hp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling best hyperparameters: %w", err)
	}
	if err := afero.AtomicFileUpdate(
		o.deps.Fs, o.config.OutputDir, BestRunHyperparametersFileName, data, 0o644, o.logger,
	); err != nil {
		return fmt.Errorf("persisting best hyperparameters: %w", err)
	}
	return nil
}

// Evaluate runs the test split through the retrained model when one exists
// under the output directory, otherwise through the original pretrained
// model, and persists the metric report.
func (o *Orchestrator) Evaluate(ctx context.Context) (metrics.Report, error) {
	var report metrics.Report

	if o.config.OutputDir == "" {
		return report, fmt.Errorf("output_dir should be specified to persist the evaluation report")
	}
	if err := o.Construct(ctx); err != nil {
		return report, err
	}

	test, err := o.tokenized.Split(o.config.SplitTest)
	if err != nil {
		return report, err
	}

	modelRef := o.config.ModelID
	if ok, err := afero.DirExists(o.deps.Fs, o.config.BestModelPath()); err != nil {
		return report, fmt.Errorf("checking for retrained model: %w", err)
	} else if ok {
		modelRef = o.config.BestModelPath()
	}
	o.logger.WithField("model_ref", modelRef).Info("Evaluating on test split")

	resp, err := o.deps.Engine.Predict(ctx, PredictRequest{
		ModelRef:    modelRef,
		ModelConfig: o.classifierConfig,
		Examples:    test,
	})
	if err != nil {
		return report, fmt.Errorf("predicting test split: %w", err)
	}

	report = o.scorer.Compute(metrics.EvalPrediction{
		Logits:       resp.Logits,
		ClassIDs:     test.ClassIDs(),
		LabelVectors: test.LabelVectors(),
	})

	if err := metrics.Save(o.deps.Fs, o.config.OutputDir, report, o.logger); err != nil {
		return report, err
	}

	o.logger.WithField("f1", report.F1).
		WithField("f1_macro", report.F1Macro).
		WithField("accuracy", report.Accuracy).
		Info("Evaluation finished")
	return report, nil
}

// Start runs the default pipeline: search and retrain, then evaluate.
func (o *Orchestrator) Start(ctx context.Context) error {
	if _, err := o.Train(ctx, DefaultTrainOptions()); err != nil {
		return err
	}
	if _, err := o.Evaluate(ctx); err != nil {
		return err
	}
	return nil
}
