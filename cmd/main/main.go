package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	conf "github.com/avichaydahan/brandlight-reports/config"
	"github.com/avichaydahan/brandlight-reports/internal/app"
	"github.com/avichaydahan/brandlight-reports/internal/model"
	logging "github.com/avichaydahan/brandlight-reports/internal/otel"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func main() {
	config, appErr := conf.LoadConfig()
	if appErr != nil {
		slog.Error("brandlight_reports.main.configuration_error", slog.String("error", appErr.Error()))
		return
	}

	// slog + OTEL logging
	service := resource.NewSchemaless(
		semconv.ServiceName(model.AppServiceName),
		semconv.ServiceVersion(model.CurrentVersion),
		semconv.ServiceInstanceID(config.Consul.Id),
		semconv.ServiceNamespace(model.NamespaceName),
	)
	shutdown := logging.Setup(service)

	application, appErr := app.New(config, shutdown)
	if appErr != nil {
		slog.Error("brandlight_reports.main.application_initialization_error", slog.String("error", appErr.Error()))
		return
	}

	initSignals(application)

	slog.Debug("brandlight_reports.main.configuration_loaded",
		slog.String("http_addr", config.HTTP.Addr),
		slog.String("consul", config.Consul.Address),
		slog.String("consul_id", config.Consul.Id),
	)

	slog.Info("brandlight_reports.main.starting_application")
	startErr := application.Start()
	if startErr != nil {
		slog.Error("brandlight_reports.main.application_start_error", slog.String("error", startErr.Error()))
	} else {
		slog.Info("brandlight_reports.main.application_started_successfully")
	}
}

func initSignals(application *app.App) {
	slog.Info("brandlight_reports.main.initializing_stop_signals")
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch)

	go func() {
		for {
			s := <-sigch
			handleSignals(s, application)
		}
	}()
}

func handleSignals(signal os.Signal, application *app.App) {
	if signal == syscall.SIGTERM || signal == syscall.SIGINT || signal == syscall.SIGKILL {
		err := application.Stop()
		if err != nil {
			return
		}
		slog.Info("brandlight_reports.main.received_kill_signal",
			slog.String("signal", signal.String()),
			slog.String("status", "service gracefully stopped"),
		)
		os.Exit(0)
	}
}
