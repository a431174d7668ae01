package otelcol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"smallbiznis-paytopublish/pkg/config"
	"smallbiznis-paytopublish/pkg/otelcol/exporters"
)

func TestProvideTraceWithoutExporter(t *testing.T) {
	tp := ProvideTrace(nil)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	require.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestNewTracerProvider(t *testing.T) {
	cfg := &config.Config{AppName: "paytopublish", AppEnv: "test"}
	tp := NewTracerProvider(Params{Config: cfg})
	require.NotNil(t, tp)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestExporterDisabledWithoutAddr(t *testing.T) {
	exp, err := exporters.Provide(&config.Config{})
	require.NoError(t, err)
	require.Nil(t, exp)
}
