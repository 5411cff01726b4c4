package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paystack-mcp-server/logging"
	"paystack-mcp-server/models"
	"paystack-mcp-server/monitoring"
)

// InvalidAPIResponse is returned when Paystack answers with a non-2xx status
type InvalidAPIResponse struct {
	StatusCode int
}

func (e *InvalidAPIResponse) Error() string {
	return fmt.Sprintf("invalid status returned from paystack api: [%d]", e.StatusCode)
}

//go:generate mockgen -source=paystack_service.go -destination=../mocks/mock_service.go -package=mocks

// TransactionFetcher looks up Paystack transactions
type TransactionFetcher interface {
	VerifyTransaction(ctx context.Context, reference string) (*models.TransactionResponse, error)
	FetchTransaction(ctx context.Context, transactionID int64) (*models.TransactionResponse, error)
}

// PaystackService calls the Paystack REST API
type PaystackService struct {
	tracer     trace.Tracer
	apiBaseURL string
	secretKey  string
	httpClient *http.Client
}

// NewPaystackService creates a new Paystack service
func NewPaystackService(tracer trace.Tracer, secretKey, apiBaseURL string, timeout time.Duration) *PaystackService {
	return &PaystackService{
		tracer:     tracer,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// VerifyTransaction verifies a transaction using its reference code
func (s *PaystackService) VerifyTransaction(ctx context.Context, reference string) (*models.TransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "paystack.verify_transaction")
	defer span.End()
	span.SetAttributes(attribute.String("paystack.reference", reference))

	return s.makeRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), "verify")
}

// FetchTransaction fetches the details of a transaction by ID
func (s *PaystackService) FetchTransaction(ctx context.Context, transactionID int64) (*models.TransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "paystack.fetch_transaction")
	defer span.End()
	span.SetAttributes(attribute.Int64("paystack.transaction_id", transactionID))

	return s.makeRequest(ctx, http.MethodGet, "/transaction/"+strconv.FormatInt(transactionID, 10), "fetch")
}

func (s *PaystackService) makeRequest(ctx context.Context, method, endpoint, op string) (*models.TransactionResponse, error) {
	span := trace.SpanFromContext(ctx)
	logger := logging.WithTraceContext(span)

	reqURL := s.apiBaseURL + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		s.recordCall(ctx, duration, op, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "paystack request failed")
		logger.Error("Error making Paystack API request", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("failed to call paystack: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("paystack.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.recordCall(ctx, duration, op, "failed")
		span.SetStatus(codes.Error, "unexpected status")
		logger.Warn("Paystack API returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("endpoint", endpoint),
		)
		// drain for keep-alive
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &InvalidAPIResponse{StatusCode: resp.StatusCode}
	}

	var out models.TransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		s.recordCall(ctx, duration, op, "decode_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid response body")
		logger.Error("Failed to decode Paystack response", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}

	s.recordCall(ctx, duration, op, "success")
	span.SetAttributes(attribute.Bool("paystack.status", out.Status))

	return &out, nil
}

func (s *PaystackService) recordCall(ctx context.Context, seconds float64, op, status string) {
	monitoring.ProviderCallDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("endpoint", op),
			attribute.String("status", status),
		),
	)
}
