package global_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildbarn/bb-event-sink/pkg/configuration"
	"github.com/buildbarn/bb-event-sink/pkg/global"
	"github.com/stretchr/testify/require"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestApplyConfiguration(t *testing.T) {
	t.Run("TracingDisabled", func(t *testing.T) {
		_, tracerProvider, err := global.ApplyConfiguration(&configuration.GlobalConfiguration{})
		require.NoError(t, err)
		_, isSDK := tracerProvider.(*sdktrace.TracerProvider)
		require.False(t, isSDK)
	})

	t.Run("TracingEnabled", func(t *testing.T) {
		_, tracerProvider, err := global.ApplyConfiguration(&configuration.GlobalConfiguration{
			Tracing: &configuration.TracingConfiguration{
				MaximumSamplesPerSecond: 10,
			},
		})
		require.NoError(t, err)
		_, isSDK := tracerProvider.(*sdktrace.TracerProvider)
		require.True(t, isSDK)
	})
}

func TestDiagnosticsServerHandler(t *testing.T) {
	diagnosticsServer, _, err := global.ApplyConfiguration(&configuration.GlobalConfiguration{
		DiagnosticsHTTPServer: &configuration.DiagnosticsHTTPServerConfiguration{
			ListenAddress:    ":0",
			EnablePrometheus: true,
		},
	})
	require.NoError(t, err)
	server := httptest.NewServer(diagnosticsServer.NewHandler())
	defer server.Close()

	get := func(path string) int {
		response, err := http.Get(server.URL + path)
		require.NoError(t, err)
		response.Body.Close()
		return response.StatusCode
	}

	require.Equal(t, http.StatusOK, get("/-/healthy"))
	require.Equal(t, http.StatusServiceUnavailable, get("/-/ready"))
	diagnosticsServer.SetReady()
	require.Equal(t, http.StatusOK, get("/-/ready"))
	diagnosticsServer.SetNotServing()
	require.Equal(t, http.StatusServiceUnavailable, get("/-/ready"))

	require.Equal(t, http.StatusOK, get("/metrics"))
	// pprof is not enabled.
	require.Equal(t, http.StatusNotFound, get("/debug/pprof/"))
}
