package hub

import (
	"encoding/json"
	"fmt"
)

// ModelConfig is the subset of a pretrained model's config.json this system
// cares about: architecture identity and the label head shipped with the
// checkpoint.
type ModelConfig struct {
	ModelType             string            `json:"model_type"`
	Architectures         []string          `json:"architectures"`
	VocabSize             int               `json:"vocab_size"`
	HiddenSize            int               `json:"hidden_size"`
	MaxPositionEmbeddings int               `json:"max_position_embeddings"`
	ProblemType           string            `json:"problem_type,omitempty"`
	ID2Label              map[string]string `json:"id2label,omitempty"`
	Label2ID              map[string]int    `json:"label2id,omitempty"`
}

// ParseModelConfig parses a raw config.json payload.
func ParseModelConfig(data []byte) (*ModelConfig, error) {
	var config ModelConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse model config JSON: %w", err)
	}
	return &config, nil
}
