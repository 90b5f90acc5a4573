package logging

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)
		require.NoError(t, c.Validate())
	})

	t.Run("negative rotation knobs are rejected", func(t *testing.T) {
		c := &Config{}
		c.MaxSize = -1
		require.Error(t, c.Validate())
	})

	t.Run("bad level is rejected", func(t *testing.T) {
		c := &Config{Level: "loud"}
		require.Error(t, c.Validate())
	})

	t.Run("WithViper", func(t *testing.T) {
		v := viper.New()
		v.Set("logging.level", "debug")
		v.Set("logging.disableConsoleOutput", true)

		c, err := NewConfig(WithViper(v))
		require.NoError(t, err)
		require.Equal(t, Level("debug"), c.Level)
		require.True(t, c.DisableConsoleOutput)
	})

	t.Run("WithViper nil viper", func(t *testing.T) {
		_, err := NewConfig(WithViper(nil))
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	c := &Config{Debug: true, DisableConsoleOutput: true}
	c.Filename = t.TempDir() + "/tune.log"

	l, err := NewLogger(c)
	require.NoError(t, err)
	require.NotNil(t, l)

	ForZap(l).WithField("component", "test").Info("hello")
}
