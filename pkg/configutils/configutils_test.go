package configutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveAndMergeFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		err := ResolveAndMergeFile(viper.New(), filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("no extension", func(t *testing.T) {
		path := writeFile(t, dir, "noext", "a: 1\n")
		err := ResolveAndMergeFile(viper.New(), path)
		require.Error(t, err)
	})

	t.Run("plain file", func(t *testing.T) {
		path := writeFile(t, dir, "plain.yaml", "model_id: roberta-base\n")
		v := viper.New()
		require.NoError(t, ResolveAndMergeFile(v, path))
		require.Equal(t, "roberta-base", v.GetString("model_id"))
	})

	t.Run("imports merge children first", func(t *testing.T) {
		writeFile(t, dir, "base.yaml", "max_length: 128\nmodel_id: bert-base\n")
		root := writeFile(t, dir, "root.yaml", "imports:\n  - base.yaml\nmodel_id: roberta-base\n")

		v := viper.New()
		require.NoError(t, ResolveAndMergeFile(v, root))
		require.Equal(t, 128, v.GetInt("max_length"))
		require.Equal(t, "roberta-base", v.GetString("model_id"))
	})
}

func TestProvideViperFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.yaml", "model_id: roberta-base\nengine:\n  endpoint: http://localhost:9000\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--debug"}))

	var v *viper.Viper
	app := fx.New(
		ProvideViperFromFile("TEST_AGENT", flags, path),
		fx.Populate(&v),
		fx.NopLogger,
	)
	require.NoError(t, app.Err())

	require.Equal(t, "roberta-base", v.GetString("model_id"))
	require.Equal(t, "http://localhost:9000", v.GetString("engine.endpoint"))
	require.True(t, v.GetBool("debug"))
}

func TestProvideViperFromFileRequiresPath(t *testing.T) {
	var v *viper.Viper
	app := fx.New(
		ProvideViperFromFile("TEST_AGENT", nil, ""),
		fx.Populate(&v),
		fx.NopLogger,
	)
	require.Error(t, app.Err())
}

func TestBindEnvsRecursive(t *testing.T) {
	type inner struct {
		Endpoint string `mapstructure:"endpoint"`
	}
	type outer struct {
		ModelID string `mapstructure:"model_id"`
		Engine  *inner `mapstructure:"engine"`
	}

	v := viper.New()
	var c outer
	require.NoError(t, BindEnvsRecursive(v, &c, ""))

	t.Setenv("MODEL_ID", "roberta-base")
	require.Equal(t, "roberta-base", v.GetString("model_id"))
}
