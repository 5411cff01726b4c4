package logging

import (
	"context"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// No-op until InitLogger runs so packages can log from tests and init code.
	logger         = zap.NewNop()
	loggerProvider *sdklog.LoggerProvider
	serviceName    = "paystack-mcp-server"
)

// Options controls logger initialisation
type Options struct {
	ServiceName string
	// OTLPEndpoint is the gRPC collector address; empty keeps logs on stderr only.
	OTLPEndpoint string
	Debug        bool
}

// InitLogger builds the stderr JSON logger and, when an OTLP endpoint is
// given, tees every entry into an OpenTelemetry log pipeline.
func InitLogger(opts Options) error {
	if opts.ServiceName != "" {
		serviceName = opts.ServiceName
	}

	base, err := newStderrLogger(opts.Debug)
	if err != nil {
		return err
	}
	logger = base

	if opts.OTLPEndpoint == "" {
		return nil
	}

	provider, err := newOTLPProvider(context.Background(), opts.OTLPEndpoint)
	if err != nil {
		logger.Warn("OTLP log export disabled, logs will only go to stderr", zap.Error(err))
		return nil
	}
	loggerProvider = provider
	global.SetLoggerProvider(provider)

	logger = withOTelCore(base, provider)
	logger.Info("OTLP log export enabled", zap.String("endpoint", opts.OTLPEndpoint))

	return nil
}

func newStderrLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "msg"
	config.EncoderConfig.LevelKey = "level"
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// skip the package-level wrappers when reporting the caller
	return config.Build(zap.AddCallerSkip(1))
}

func newOTLPProvider(ctx context.Context, endpoint string) (*sdklog.LoggerProvider, error) {
	exporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}

// withOTelCore returns a logger writing to both base's core and provider
func withOTelCore(base *zap.Logger, provider otellog.LoggerProvider) *zap.Logger {
	bridge := otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(provider))
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, bridge)
	}))
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	return logger
}

// SetLogger replaces the global logger
func SetLogger(l *zap.Logger) {
	logger = l
}

// WithTraceContext returns a service-tagged logger carrying the span's trace and span IDs
func WithTraceContext(span trace.Span) *zap.Logger {
	l := service()
	if sc := span.SpanContext(); sc.IsValid() {
		l = l.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}

func service() *zap.Logger {
	return logger.With(zap.String("service", serviceName))
}

func Info(msg string, fields ...zap.Field)  { service().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { service().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { service().Error(msg, fields...) }

// Fatal logs and exits the process
func Fatal(msg string, fields ...zap.Field) { service().Fatal(msg, fields...) }

// Sync flushes any buffered log entries
func Sync() error {
	return logger.Sync()
}

// Shutdown flushes and stops the OTLP log pipeline, if one was started
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}
