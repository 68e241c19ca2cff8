package logging

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Setup initializes OpenTelemetry with slog logging and returns a shutdown function
func Setup(service *resource.Resource) func(context.Context) error {
	// Retrieve log level from the environment, default to info
	var verbose slog.LevelVar
	verbose.Set(slog.LevelInfo)
	if input := os.Getenv("OTEL_LOG_LEVEL"); input != "" {
		_ = verbose.UnmarshalText([]byte(input))
	}

	ctx := context.Background()

	exporter, err := stdoutlog.New()
	if err != nil {
		slog.ErrorContext(ctx, "OpenTelemetry setup failed", "error", err)
		os.Exit(1)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(service),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)

	// Redirect slog.Default() to OpenTelemetry
	stdlog := slog.New(&leveledHandler{
		level: &verbose,
		inner: otelslog.NewHandler("slog", otelslog.WithLoggerProvider(provider)),
	})
	slog.SetDefault(stdlog)

	slog.InfoContext(ctx, "OpenTelemetry setup successful")

	return provider.Shutdown
}

// leveledHandler filters records below the configured level before they
// reach the OTel bridge, which otherwise forwards everything.
type leveledHandler struct {
	level *slog.LevelVar
	inner slog.Handler
}

func (h *leveledHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.inner.Enabled(ctx, level)
}

func (h *leveledHandler) Handle(ctx context.Context, rec slog.Record) error {
	return h.inner.Handle(ctx, rec)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{level: h.level, inner: h.inner.WithGroup(name)}
}
