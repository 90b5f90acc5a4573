package metrics

import (
	"encoding/json"
	"testing"

	spfafero "github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/logging"
)

func TestReportRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	want := Report{F1: 0.75, F1Macro: 11.0 / 15.0, Accuracy: 0.5}

	require.NoError(t, Save(fs, "/out", want, logging.Discard()))

	got, err := Load(fs, "/out")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReportKeys(t *testing.T) {
	data, err := json.Marshal(Report{})
	require.NoError(t, err)

	var keys map[string]float64
	require.NoError(t, json.Unmarshal(data, &keys))

	assert.Len(t, keys, 3)
	assert.Contains(t, keys, "f1")
	assert.Contains(t, keys, "f1_macro")
	assert.Contains(t, keys, "accuracy")
}

func TestLoadMissingReport(t *testing.T) {
	fs := spfafero.NewMemMapFs()
	_, err := Load(fs, "/nowhere")
	require.Error(t, err)
}
