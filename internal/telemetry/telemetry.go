package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// Version is reported as the service version on traces.
const Version = "0.3.0"

// TracerOptions selects where spans go and how many are kept.
type TracerOptions struct {
	// Writer receives one JSON document per span. Defaults to stderr so spans
	// do not interleave with the JSON log stream on stdout.
	Writer io.Writer
	// SampleRatio in (0,1]. Zero means every trace.
	SampleRatio float64
	Pretty      bool
}

// InitTracer installs the global tracer provider and W3C propagator.
// Call the returned func on exit to flush pending spans.
func InitTracer(opts TracerOptions) (func(context.Context) error, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.Pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("wbands"),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return nil, err
	}

	sampler := sdktrace.AlwaysSample()
	if opts.SampleRatio > 0 && opts.SampleRatio < 1 {
		sampler = sdktrace.TraceIDRatioBased(opts.SampleRatio)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
