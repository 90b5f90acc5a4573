package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func TestUseLoggingInterface(t *testing.T) {
	app := fx.New(
		fx.Provide(func() Interface { return NewTestLogger() }),
		UseLoggingInterface,
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Stop(context.Background()))
}

func TestFxLoggerAdapterEvents(t *testing.T) {
	adapter := &fxLoggerAdapter{Interface: NewTestLogger()}

	require.NotPanics(t, func() {
		adapter.LogEvent(&fxevent.Provided{ConstructorName: "newThing", OutputTypeNames: []string{"*logging.thing"}})
		adapter.LogEvent(&fxevent.Invoking{FunctionName: "run"})
		adapter.LogEvent(&fxevent.Started{})
		adapter.LogEvent(&fxevent.Stopped{})
	})
}
