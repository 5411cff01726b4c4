package tools

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paystack-mcp-server/logging"
	"paystack-mcp-server/monitoring"
	"paystack-mcp-server/service"
)

const (
	// ServerName is the MCP server name advertised during initialisation
	ServerName = "paystack-transactions"

	VerifyTransactionTool = "verify_transaction"
	FetchTransactionTool  = "fetch_transaction"
	InitialPromptsPrompt  = "get_initial_prompts"

	VerifyFailedMessage = "Failed to verify transaction. Please check the reference and try again."
	FetchFailedMessage  = "Failed to fetch transaction. Please check the ID and try again."

	InitialPrompt = "You are a helpful assistant that can verify and fetch Paystack transaction details."
)

// TransactionTools exposes Paystack transaction lookups as MCP tools
type TransactionTools struct {
	fetcher  service.TransactionFetcher
	tracer   trace.Tracer
	validate *validator.Validate
}

// NewTransactionTools creates the tool handlers
func NewTransactionTools(fetcher service.TransactionFetcher, tracer trace.Tracer) *TransactionTools {
	return &TransactionTools{
		fetcher:  fetcher,
		tracer:   tracer,
		validate: validator.New(),
	}
}

// NewServer creates an MCP server with the Paystack tools and prompt registered
func NewServer(fetcher service.TransactionFetcher, tracer trace.Tracer, version string) *server.MCPServer {
	t := NewTransactionTools(fetcher, tracer)

	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(t.instrument),
	)
	t.Register(s)

	return s
}

// Register adds the tools and prompt to s
func (t *TransactionTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(VerifyTransactionTool,
		mcp.WithDescription("Verify a Paystack transaction using its reference."),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("The unique reference code for the transaction"),
		),
	), t.VerifyTransaction)

	s.AddTool(mcp.NewTool(FetchTransactionTool,
		mcp.WithDescription("Fetch details of a specific Paystack transaction by ID."),
		mcp.WithNumber("transaction_id",
			mcp.Required(),
			mcp.Description("The numeric ID of the transaction"),
		),
	), t.FetchTransaction)

	s.AddPrompt(mcp.NewPrompt(InitialPromptsPrompt,
		mcp.WithPromptDescription("System guidance for a Paystack transaction assistant"),
	), t.InitialPrompts)
}

// VerifyTransaction handles the verify_transaction tool
func (t *TransactionTools) VerifyTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := logging.WithTraceContext(trace.SpanFromContext(ctx))

	reference, err := req.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.validate.Var(strings.TrimSpace(reference), "required"); err != nil {
		logger.Warn("Rejected blank transaction reference")
		return failed(ctx, VerifyFailedMessage), nil
	}

	resp, err := t.fetcher.VerifyTransaction(ctx, reference)
	if err != nil || resp == nil || !resp.Status {
		logger.Warn("Transaction verification failed", zap.String("reference", reference), zap.Error(err))
		return failed(ctx, VerifyFailedMessage), nil
	}

	return mcp.NewToolResultText(service.FormatTransaction(resp)), nil
}

// FetchTransaction handles the fetch_transaction tool
func (t *TransactionTools) FetchTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := logging.WithTraceContext(trace.SpanFromContext(ctx))

	raw, err := req.RequireFloat("transaction_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// JSON numbers arrive as float64; only whole, positive values are IDs.
	if raw != math.Trunc(raw) || raw >= math.MaxInt64 {
		logger.Warn("Rejected non-integral transaction id", zap.Float64("transaction_id", raw))
		return failed(ctx, FetchFailedMessage), nil
	}
	id := int64(raw)
	if err := t.validate.Var(id, "gt=0"); err != nil {
		logger.Warn("Rejected non-positive transaction id", zap.Int64("transaction_id", id))
		return failed(ctx, FetchFailedMessage), nil
	}

	resp, err := t.fetcher.FetchTransaction(ctx, id)
	if err != nil || resp == nil || !resp.Status {
		logger.Warn("Transaction fetch failed", zap.Int64("transaction_id", id), zap.Error(err))
		return failed(ctx, FetchFailedMessage), nil
	}

	return mcp.NewToolResultText(service.FormatTransaction(resp)), nil
}

// InitialPrompts handles the get_initial_prompts prompt
func (t *TransactionTools) InitialPrompts(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Paystack transaction assistant",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(InitialPrompt)),
		},
	), nil
}

// instrument wraps every tool call in a span, an invocation log line and metrics
func (t *TransactionTools) instrument(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool := req.Params.Name
		invocationID := uuid.NewString()

		ctx, span := t.tracer.Start(ctx, "mcp.tool."+tool)
		defer span.End()
		span.SetAttributes(
			attribute.String("mcp.tool", tool),
			attribute.String("mcp.invocation_id", invocationID),
		)

		logger := logging.WithTraceContext(span)
		logger.Info("Tool invoked", zap.String("tool", tool), zap.String("invocation_id", invocationID))

		outcome := outcomeOK
		ctx = context.WithValue(ctx, outcomeKey{}, &outcome)

		start := time.Now()
		result, err := next(ctx, req)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			outcome = outcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case result != nil && result.IsError:
			outcome = outcomeInvalidArguments
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("mcp.outcome", outcome))

		attrs := metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("outcome", outcome),
		)
		monitoring.ToolCallCounter.Add(ctx, 1, attrs)
		monitoring.ToolCallDuration.Record(ctx, elapsed.Seconds(), attrs)

		logger.Info("Tool completed",
			zap.String("tool", tool),
			zap.String("invocation_id", invocationID),
			zap.String("outcome", outcome),
			zap.Duration("duration", elapsed),
		)

		return result, err
	}
}

const (
	outcomeOK               = "ok"
	outcomeFailed           = "failed"
	outcomeError            = "error"
	outcomeInvalidArguments = "invalid_arguments"
)

type outcomeKey struct{}

// failed marks the invocation as a lookup failure and returns msg as the tool result
func failed(ctx context.Context, msg string) *mcp.CallToolResult {
	if outcome, ok := ctx.Value(outcomeKey{}).(*string); ok {
		*outcome = outcomeFailed
	}
	return mcp.NewToolResultText(msg)
}

// ResultText returns the first text content of a tool result
func ResultText(result *mcp.CallToolResult) (string, bool) {
	if result == nil || len(result.Content) == 0 {
		return "", false
	}
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, true
	case *mcp.TextContent:
		return c.Text, true
	}
	return "", false
}
