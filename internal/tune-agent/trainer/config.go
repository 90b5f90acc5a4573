package trainer

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/tunelab/tune/pkg/configutils"
	"github.com/tunelab/tune/pkg/dataset"
	"github.com/tunelab/tune/pkg/logging"
)

// Artifact names under the output directory.
const (
	BestModelDirName               = "best_model"
	BestRunHyperparametersFileName = "best_run_hyperparameters.json"
)

const (
	defaultMaxLength     = 128
	defaultCommitMessage = "model update"
	defaultAuthorName    = "tune-agent"
	defaultAuthorEmail   = "tune-agent@localhost"
)

// EngineConfig locates the training engine sidecar.
type EngineConfig struct {
	Endpoint     string `mapstructure:"endpoint" validate:"required"`
	GPUsPerTrial int    `mapstructure:"gpus_per_trial"`
}

// PublishConfig drives the publish step. WorkDir defaults to the model alias,
// relative to the current directory.
type PublishConfig struct {
	Organization  string `mapstructure:"organization"`
	ModelAlias    string `mapstructure:"model_alias"`
	UploadWeights bool   `mapstructure:"upload_weights"`
	WorkDir       string `mapstructure:"work_dir"`
	CommitMessage string `mapstructure:"commit_message"`
	AuthorName    string `mapstructure:"author_name"`
	AuthorEmail   string `mapstructure:"author_email"`
}

// Config is the trainer orchestrator configuration.
type Config struct {
	AnotherLogger logging.Interface

	ModelID   string `mapstructure:"model_id" validate:"required"`
	OutputDir string `mapstructure:"output_dir"`

	MaxLength            int            `mapstructure:"max_length" validate:"gt=0"`
	MultiLabel           bool           `mapstructure:"multi_label"`
	LabelToID            map[string]int `mapstructure:"label2id" validate:"required,min=1"`
	TokenizerParallelism bool           `mapstructure:"tokenizer_parallelism"`

	DataDir     string `mapstructure:"data_dir" validate:"required"`
	DatasetName string `mapstructure:"dataset_name"`
	DatasetType string `mapstructure:"dataset_type"`

	SplitTrain      string `mapstructure:"split_train" validate:"required"`
	SplitValidation string `mapstructure:"split_validation" validate:"required"`
	SplitTest       string `mapstructure:"split_test" validate:"required"`

	Engine  EngineConfig  `mapstructure:"engine"`
	Publish PublishConfig `mapstructure:"publish"`
}

func defaultConfig() *Config {
	return &Config{
		MaxLength:       defaultMaxLength,
		SplitTrain:      dataset.SplitTrain,
		SplitValidation: dataset.SplitValidation,
		SplitTest:       dataset.SplitTest,
		Publish: PublishConfig{
			CommitMessage: defaultCommitMessage,
			AuthorName:    defaultAuthorName,
			AuthorEmail:   defaultAuthorEmail,
		},
	}
}

// Option represents a trainer configuration option.
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

// NewTrainerConfig builds and returns a new configuration from the given
// options.
func NewTrainerConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// WithViper attempts to resolve the configuration using Viper.
func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		if err := configutils.BindEnvsRecursive(v, c, ""); err != nil {
			return fmt.Errorf("error occurred when binding environment variables: %w", err)
		}

		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("error occurred when unmarshalling config: %w", err)
		}
		return nil
	}
}

// WithAnotherLog sets the logger used by the orchestrator.
func WithAnotherLog(logger logging.Interface) Option {
	return func(c *Config) error {
		c.AnotherLogger = logger
		return nil
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// SplitNames returns the configured split names in load order.
func (c *Config) SplitNames() []string {
	return []string{c.SplitTrain, c.SplitValidation, c.SplitTest}
}

// BestModelPath is where the retrained model is persisted. Valid only when
// OutputDir is set.
func (c *Config) BestModelPath() string {
	return filepath.Join(c.OutputDir, BestModelDirName)
}

// BestRunHyperparametersPath is where the winning search configuration is
// persisted.
func (c *Config) BestRunHyperparametersPath() string {
	return filepath.Join(c.OutputDir, BestRunHyperparametersFileName)
}
