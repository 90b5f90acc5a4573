package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tunelab/tune/pkg/dataset"
)

// Hyperparameters is one candidate training configuration. The struct is
// immutable once built; the winning trial's values are rebuilt into a fresh
// TrainRequest rather than patched onto shared state.
type Hyperparameters struct {
	LearningRate            float64 `json:"learning_rate"`
	NumTrainEpochs          int     `json:"num_train_epochs"`
	PerDeviceTrainBatchSize int     `json:"per_device_train_batch_size"`
}

// SearchSpace bounds the hyperparameter search. Ranges carry exactly two
// bounds; batch sizes are discrete choices.
type SearchSpace struct {
	LearningRateRange []float64 `json:"learning_rate_range"`
	EpochRange        []int     `json:"epoch_range"`
	BatchSizes        []int     `json:"batch_sizes"`
}

// Resources is the pass-through parallelism hint for the engine, which owns
// all scheduling and device placement.
type Resources struct {
	CPUsPerTrial int `json:"cpus_per_trial"`
	GPUsPerTrial int `json:"gpus_per_trial"`
}

// ClassifierConfig is the configuration override applied to the pretrained
// model: the label head and the problem type.
type ClassifierConfig struct {
	ModelType   string         `json:"model_type,omitempty"`
	NumLabels   int            `json:"num_labels"`
	ProblemType string         `json:"problem_type"`
	Label2ID    map[string]int `json:"label2id"`
	ID2Label    map[int]string `json:"id2label"`
}

// TokenizeRequest asks the engine's tokenizer for a batched transform of raw
// texts into token ids, truncated and padded to MaxLength.
type TokenizeRequest struct {
	ModelID     string   `json:"model_id"`
	Texts       []string `json:"texts"`
	MaxLength   int      `json:"max_length"`
	Truncation  bool     `json:"truncation"`
	Padding     string   `json:"padding"`
	Parallelism bool     `json:"parallelism"`
}

type TokenizeResponse struct {
	InputIDs      [][]int `json:"input_ids"`
	AttentionMask [][]int `json:"attention_mask"`
}

// SearchRequest submits a hyperparameter search to the engine. SearchID
// correlates engine-side logs with the orchestrator's.
type SearchRequest struct {
	SearchID    string                 `json:"search_id"`
	ModelID     string                 `json:"model_id"`
	ModelConfig ClassifierConfig       `json:"model_config"`
	Train       dataset.TokenizedSplit `json:"train"`
	Validation  dataset.TokenizedSplit `json:"validation"`
	Space       SearchSpace            `json:"space"`
	Trials      int                    `json:"n_trials"`
	EvalSteps   int                    `json:"eval_steps"`
	Seed        int                    `json:"seed"`
	Resources   Resources              `json:"resources"`
}

// Trial is one evaluated candidate: its hyperparameters and the model's
// outputs on the validation split, which the orchestrator scores.
type Trial struct {
	RunID           string          `json:"run_id"`
	Hyperparameters Hyperparameters `json:"hyperparameters"`
	Logits          [][]float64     `json:"logits"`
}

type SearchResponse struct {
	Trials []Trial `json:"trials"`
}

// TrainRequest runs one training pass with fixed hyperparameters and no
// periodic evaluation; the engine persists the result under SaveDir.
type TrainRequest struct {
	ModelID         string                 `json:"model_id"`
	ModelConfig     ClassifierConfig       `json:"model_config"`
	Train           dataset.TokenizedSplit `json:"train"`
	Hyperparameters Hyperparameters        `json:"hyperparameters"`
	Seed            int                    `json:"seed"`
	SaveDir         string                 `json:"save_dir"`
}

type TrainResponse struct {
	SavedPath string `json:"saved_path"`
}

// PredictRequest runs inference over tokenized examples. ModelRef is either a
// persisted model directory or a hub model id.
type PredictRequest struct {
	ModelRef    string                 `json:"model_ref"`
	ModelConfig ClassifierConfig       `json:"model_config"`
	Examples    dataset.TokenizedSplit `json:"examples"`
}

type PredictResponse struct {
	Logits [][]float64 `json:"logits"`
}

// EngineClient is the hyperparameter-search/training engine collaborator. All
// calls block until the engine completes the delegated work; the engine owns
// worker pools and device placement.
type EngineClient interface {
	Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResponse, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	Train(ctx context.Context, req TrainRequest) (*TrainResponse, error)
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
}

type engineHTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewEngineClient returns an EngineClient against the configured endpoint.
// The underlying HTTP client carries no timeout: search and training calls
// legitimately run for hours.
func NewEngineClient(config EngineConfig) EngineClient {
	return &engineHTTPClient{
		baseURL: config.Endpoint,
		client:  &http.Client{},
	}
}

type engineErrorBody struct {
	Message string `json:"message"`
}

func (e *engineHTTPClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshalling %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		var engineErr engineErrorBody
		if err := json.Unmarshal(body, &engineErr); err == nil && engineErr.Message != "" {
			return fmt.Errorf("engine %s - StatusCode %d: %s", path, resp.StatusCode, engineErr.Message)
		}
		return fmt.Errorf("engine %s - StatusCode %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshalling %s response %s: %w", path, string(body), err)
	}
	return nil
}

func (e *engineHTTPClient) Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResponse, error) {
	var resp TokenizeResponse
	if err := e.postJSON(ctx, "/tokenize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *engineHTTPClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := e.postJSON(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *engineHTTPClient) Train(ctx context.Context, req TrainRequest) (*TrainResponse, error) {
	var resp TrainResponse
	if err := e.postJSON(ctx, "/train", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *engineHTTPClient) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	var resp PredictResponse
	if err := e.postJSON(ctx, "/predict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
