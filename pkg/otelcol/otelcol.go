package otelcol

import (
	"context"

	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/otelcol/exporters"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("otelcol",
	fx.Provide(exporters.Provide),
	fx.Provide(NewTracerProvider),
	fx.Invoke(register),
)

type Params struct {
	fx.In

	Config   *config.Config
	Exporter trace.SpanExporter `optional:"true"`
}

func NewTracerProvider(p Params) *trace.TracerProvider {
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", p.Config.AppName),
		attribute.String("service.version", p.Config.AppVersion),
		attribute.String("deployment.environment", p.Config.AppEnv),
	)

	merged, err := resource.Merge(resource.Default(), res)
	if err != nil {
		merged = resource.Default()
	}

	return ProvideTrace(p.Exporter, trace.WithResource(merged))
}

// ProvideTrace builds a tracer provider; spans are only exported when
// exporter is non-nil.
func ProvideTrace(exporter trace.SpanExporter, opts ...trace.TracerProviderOption) *trace.TracerProvider {
	if len(opts) == 0 {
		opts = []trace.TracerProviderOption{trace.WithResource(resource.Default())}
	}

	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}

	return trace.NewTracerProvider(opts...)
}

func register(lc fx.Lifecycle, tp *trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			zap.L().Info("shutting down tracer provider")
			return tp.Shutdown(ctx)
		},
	})
}
