package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paystack-mcp-server/config"
	"paystack-mcp-server/handlers"
	"paystack-mcp-server/logging"
	"paystack-mcp-server/monitoring"
	"paystack-mcp-server/service"
	"paystack-mcp-server/tools"
)

var version = "dev"

func main() {
	cfg, err := config.Get()
	if err != nil {
		os.Exit(reportConfigError(os.Stderr, err))
	}

	otlpEndpoint := ""
	if cfg.TelemetryEnabled {
		otlpEndpoint = cfg.OTELEndpoint
	}

	if err := logging.InitLogger(logging.Options{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: otlpEndpoint,
		Debug:        cfg.Debug,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logging.Sync()
	defer func() {
		if err := logging.Shutdown(context.Background()); err != nil {
			logging.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	var tracer trace.Tracer = otel.Tracer(cfg.ServiceName)
	if cfg.TelemetryEnabled {
		tp, t, err := monitoring.InitTracer(cfg.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			logging.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logging.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
		tracer = t
	}

	mp, _, err := monitoring.InitMeter(cfg.ServiceName, otlpEndpoint)
	if err != nil {
		logging.Fatal("Failed to initialize meter", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logging.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	paystackService := service.NewPaystackService(tracer, cfg.PaystackSecretKey, cfg.PaystackAPIBase, cfg.RequestTimeout())
	mcpServer := tools.NewServer(paystackService, tracer, version)
	mcpHandler := handlers.NewMCPHandler(mcpServer, cfg.BaseURL)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(handlers.HTTPMetricsMiddleware())
	handlers.Init(r, mcpHandler)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		logging.Info("Starting MCP Paystack transactions server",
			zap.String("addr", cfg.Addr()),
			zap.String("public_url", cfg.BaseURL),
			zap.String("paystack_api_base", cfg.PaystackAPIBase),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(srv, mcpHandler)

	logging.Info("Server successfully shutdown")
}

// reportConfigError explains a startup configuration failure on w and returns
// the process exit code.
func reportConfigError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, config.ErrMissingSecretKey) {
		fmt.Fprintf(w, "Please set the %s environment variable.\n", config.SecretKeyEnv)
		fmt.Fprintf(w, "Example: export %s=sk_test_your_key_here\n", config.SecretKeyEnv)
	}
	return 1
}

// waitForShutdown blocks until an interrupt or terminate signal arrives, then
// closes SSE sessions and drains the HTTP server.
func waitForShutdown(srv *http.Server, mcpHandler *handlers.MCPHandler) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logging.Info("Close signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mcpHandler.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error closing SSE sessions", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}
}
