package observability

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts every application span. It is a no-op tracer until
// InitTracing installs a provider.
var Tracer trace.Tracer = otel.Tracer("hackit-api")

// TracingConfig mirrors the TRACING_* settings.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Exporter       string // "otlp" or "stdout"
	OTLPEndpoint   string // host:port, or a full http(s) URL
	SamplerRatio   float64
}

func noopShutdown(context.Context) error { return nil }

// InitTracing installs the global tracer provider and W3C propagators. The
// returned function flushes and stops the provider.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		Tracer = otel.Tracer(cfg.ServiceName)
		return noopShutdown, nil
	}

	exporter, err := newExporter(context.Background(), cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	Tracer = tp.Tracer(cfg.ServiceName)
	return tp.Shutdown, nil
}

// newExporter builds the span exporter. stdout writes to w, or os.Stdout when
// w is nil.
func newExporter(ctx context.Context, cfg TracingConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "otlp":
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("OTLP exporter needs an endpoint")
		}
		if strings.Contains(cfg.OTLPEndpoint, "://") {
			return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	case "", "stdout":
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if w != nil {
			opts = append(opts, stdouttrace.WithWriter(w))
		}
		return stdouttrace.New(opts...)
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}

// sampler honors the parent's decision and samples root spans at ratio.
// Ratios at or above 1 sample everything.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// StartServiceSpan starts an internal span named "<service>.<method>".
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("hackit.service", service),
			attribute.String("hackit.method", method),
		),
	)
}

// StartClientSpan starts a client span for a call to an external service.
func StartClientSpan(ctx context.Context, peer, operation string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, peer+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", peer),
			attribute.String("rpc.method", operation),
		),
	)
}

// EndSpan marks the span failed when err is non-nil, then ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
