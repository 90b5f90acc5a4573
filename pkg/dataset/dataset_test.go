package dataset

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONL(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{"text": "great product", "label": 2}

{"text": "meh", "label": 1}
{"text": "broken on arrival", "label": 0}
`
	require.NoError(t, afero.WriteFile(fs, "/data/train.jsonl", []byte(content), 0o644))

	split, err := LoadJSONL(fs, "/data/train.jsonl")
	require.NoError(t, err)
	require.Len(t, split, 3)
	assert.Equal(t, []string{"great product", "meh", "broken on arrival"}, split.Texts())
	assert.Equal(t, []int{2, 1, 0}, split.ClassIDs())
}

func TestLoadJSONLMultiLabel(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{"text": "angry and sad", "labels": [1, 0, 1]}
{"text": "pure joy", "labels": [0, 1, 0]}
`
	require.NoError(t, afero.WriteFile(fs, "/data/train.jsonl", []byte(content), 0o644))

	split, err := LoadJSONL(fs, "/data/train.jsonl")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 0, 1}, {0, 1, 0}}, split.LabelVectors())
}

func TestLoadJSONLErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := LoadJSONL(fs, "/missing.jsonl")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.jsonl", []byte("not json\n"), 0o644))
	_, err = LoadJSONL(fs, "/bad.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadJSONLOversizedLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	huge := `{"text": "` + strings.Repeat("a", 2*1024*1024) + `", "label": 0}` + "\n"
	require.NoError(t, afero.WriteFile(fs, "/huge.jsonl", []byte(`{"text": "ok", "label": 1}`+"\n"+huge), 0o644))

	_, err := LoadJSONL(fs, "/huge.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/huge.jsonl line 2")
	assert.Contains(t, err.Error(), "token too long")
}

func TestLoadDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, split := range []string{"train", "validation", "test"} {
		require.NoError(t, afero.WriteFile(fs, "/data/"+split+".jsonl",
			[]byte(`{"text": "x", "label": 0}`+"\n"), 0o644))
	}

	d, err := LoadDir(fs, "/data", "tweet_sentiment", "sentiment", []string{"train", "validation", "test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "train", "validation"}, d.SplitNames())

	_, err = d.Split("dev")
	require.Error(t, err)

	s, err := d.Split("train")
	require.NoError(t, err)
	assert.Len(t, s, 1)
}
