package global

import (
	"context"
	"net/http"
	// The pprof package does not provide a function for registering
	// its endpoints against an arbitrary mux. Load it to force
	// registration against the default mux, so we can forward
	// traffic to that mux instead.
	_ "net/http/pprof"
	"sync/atomic"

	"github.com/buildbarn/bb-event-sink/pkg/clock"
	"github.com/buildbarn/bb-event-sink/pkg/configuration"
	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DiagnosticsServer is returned by ApplyConfiguration. It can be used by
// the caller to report whether the application has started up
// successfully.
type DiagnosticsServer struct {
	configuration *configuration.DiagnosticsHTTPServerConfiguration
	ready         atomic.Bool
}

// NewHandler returns the HTTP handler of the diagnostics server. It
// exposes health checks, and optionally Prometheus metrics and pprof.
func (ds *DiagnosticsServer) NewHandler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/-/healthy", func(http.ResponseWriter, *http.Request) {})
	router.HandleFunc("/-/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ds.ready.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
	if ds.configuration.EnablePrometheus {
		router.Handle("/metrics", promhttp.Handler())
	}
	if ds.configuration.EnablePprof {
		router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	}
	return router
}

// Serve the diagnostics web server until the context is cancelled. If
// no diagnostics web server is configured, this function only waits
// for cancellation.
func (ds *DiagnosticsServer) Serve(ctx context.Context) error {
	if ds.configuration == nil {
		<-ctx.Done()
		return nil
	}

	server := &http.Server{
		Addr:    ds.configuration.ListenAddress,
		Handler: ds.NewHandler(),
	}
	go func() {
		<-ctx.Done()
		ds.SetNotServing()
		server.Shutdown(context.WithoutCancel(ctx))
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return util.StatusWrap(err, "Diagnostics HTTP server failed")
	}
	return nil
}

// SetReady updates the health probe to report healthy and ready.
func (ds *DiagnosticsServer) SetReady() {
	ds.ready.Store(true)
}

// SetNotServing updates the health probe to report healthy but not ready.
func (ds *DiagnosticsServer) SetNotServing() {
	ds.ready.Store(false)
}

// ApplyConfiguration applies configuration options that apply to the
// process as a whole. It installs an OpenTelemetry tracer provider if
// tracing is enabled, and returns it. A no-op tracer provider is
// returned otherwise.
func ApplyConfiguration(configuration *configuration.GlobalConfiguration) (*DiagnosticsServer, trace.TracerProvider, error) {
	var tracerProvider trace.TracerProvider = noop.NewTracerProvider()
	if tracingConfiguration := configuration.Tracing; tracingConfiguration != nil {
		var sampler sdktrace.Sampler
		if samplesPerSecond := tracingConfiguration.MaximumSamplesPerSecond; samplesPerSecond > 0 {
			sampler = NewConstantRateTraceSampler(samplesPerSecond, samplesPerSecond, 1, clock.SystemClock)
		} else {
			sampler = sdktrace.TraceIDRatioBased(tracingConfiguration.SampleRatio)
		}

		tracerProviderOptions := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
			sdktrace.WithResource(resource.NewSchemaless(
				attribute.String("service.name", "bb_event_sink"),
			)),
		}
		if tracingConfiguration.EnableStderrExporter {
			tracerProviderOptions = append(tracerProviderOptions, sdktrace.WithSyncer(NewStderrExporter()))
		}
		sdkTracerProvider := sdktrace.NewTracerProvider(tracerProviderOptions...)
		otel.SetTracerProvider(sdkTracerProvider)
		tracerProvider = sdkTracerProvider
	}

	return &DiagnosticsServer{
		configuration: configuration.DiagnosticsHTTPServer,
	}, tracerProvider, nil
}
