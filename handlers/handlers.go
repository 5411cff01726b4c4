package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"paystack-mcp-server/logging"
	"paystack-mcp-server/monitoring"
)

const (
	SSEPath            = "/sse"
	MessagePath        = "/message"
	StreamableHTTPPath = "/mcp"
)

// MCPHandler exposes an MCP server over HTTP
type MCPHandler struct {
	sse        *server.SSEServer
	streamable *server.StreamableHTTPServer
}

// NewMCPHandler creates the SSE and streamable HTTP transports for mcpServer.
// With an empty publicURL SSE clients are sent a relative message path, which
// resolves against whatever address they connected to.
func NewMCPHandler(mcpServer *server.MCPServer, publicURL string) *MCPHandler {
	sseOpts := []server.SSEOption{
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(MessagePath),
		server.WithUseFullURLForMessageEndpoint(publicURL != ""),
	}
	if publicURL != "" {
		sseOpts = append(sseOpts, server.WithBaseURL(publicURL))
	}

	return &MCPHandler{
		sse:        server.NewSSEServer(mcpServer, sseOpts...),
		streamable: server.NewStreamableHTTPServer(mcpServer),
	}
}

// Init registers all routes on r
func Init(r *gin.Engine, h *MCPHandler) {
	logging.Info("Registering MCP endpoints",
		zap.String("sse", SSEPath),
		zap.String("message", MessagePath),
		zap.String("streamable_http", StreamableHTTPPath),
	)

	r.GET("/health", HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET(SSEPath, gin.WrapH(h.sse.SSEHandler()))
	r.POST(MessagePath, gin.WrapH(h.sse.MessageHandler()))

	streamable := gin.WrapH(h.streamable)
	r.GET(StreamableHTTPPath, streamable)
	r.POST(StreamableHTTPPath, streamable)
	r.DELETE(StreamableHTTPPath, streamable)
}

// Shutdown closes open SSE sessions
func (h *MCPHandler) Shutdown(ctx context.Context) error {
	return h.sse.Shutdown(ctx)
}

// HealthCheck handles health check requests
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HTTPMetricsMiddleware records HTTP request metrics
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := float64(time.Since(start).Milliseconds())

		monitoring.HTTPServerDuration.Record(c.Request.Context(), duration,
			metric.WithAttributes(
				attribute.String("http_method", c.Request.Method),
				attribute.String("http_route", c.FullPath()),
				attribute.String("http_status_code", strconv.Itoa(c.Writer.Status())),
			),
		)
	}
}
