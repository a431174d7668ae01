package exporters

import (
	"smallbiznis-paytopublish/pkg/config"

	"go.opentelemetry.io/otel/sdk/trace"
)

// Provide returns the span exporter selected by OTEL.PROTOCOL, or nil when
// OTEL.ADDR is empty.
func Provide(cfg *config.Config) (trace.SpanExporter, error) {
	if cfg.Otel.Addr == "" {
		return nil, nil
	}

	switch cfg.Otel.Protocol {
	case "http":
		return ProvideHttp(cfg)
	default:
		return ProvideGrpc(cfg)
	}
}
