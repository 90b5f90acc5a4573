package afero

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunelab/tune/pkg/logging"
)

func TestAtomicFileUpdate(t *testing.T) {
	fs := NewMemMapFs()
	log := logging.Discard()

	require.NoError(t, fs.MkdirAll("/out", 0o755))

	require.NoError(t, AtomicFileUpdate(fs, "/out", "metric.json", []byte(`{"f1":1}`), 0o644, log))
	got, err := ReadFile(fs, "/out/metric.json")
	require.NoError(t, err)
	require.Equal(t, `{"f1":1}`, string(got))

	// unchanged content is a no-op rewrite
	require.NoError(t, AtomicFileUpdate(fs, "/out", "metric.json", []byte(`{"f1":1}`), 0o644, log))

	// changed content replaces the file
	require.NoError(t, AtomicFileUpdate(fs, "/out", "metric.json", []byte(`{"f1":0.5}`), 0o644, log))
	got, err = ReadFile(fs, "/out/metric.json")
	require.NoError(t, err)
	require.Equal(t, `{"f1":0.5}`, string(got))
}

func TestExists(t *testing.T) {
	fs := NewMemMapFs()
	ok, err := Exists(fs, "/missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, WriteFile(fs, "/present", []byte("x"), 0o644))
	ok, err = Exists(fs, "/present")
	require.NoError(t, err)
	require.True(t, ok)
}
