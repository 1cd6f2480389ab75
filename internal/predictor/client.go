package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"crypto-forecast-dashboard/internal/api"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/types"
)

// Fallback messages per request kind, shown when a failure carries no
// backend detail and no validation message.
const (
	FallbackPrediction = "Failed to fetch prediction"
	FallbackMovers     = "Failed to fetch market movers"
	FallbackNews       = "Failed to fetch news"
)

// APIError carries the HTTP status of a non-2xx response and the backend's
// detail message, empty when the body had none or was not JSON.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Detail)
}

// ValidationError wraps a request or response that failed its schema check.
// Its message names the offending field and is shown to the user verbatim.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Message reduces a dispatch error to the string placed in the error slot:
// the backend detail when one came back, the validation message for a
// rejected payload, otherwise the per-kind fallback. Network failures,
// bodyless statuses and 2xx parse failures all land on the fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return fallback
}

// Client dispatches prediction, movers and news requests for one provider.
type Client struct {
	api      *api.Client
	provider Provider
}

// NewClient builds a dispatcher for the given backend and provider variant.
func NewClient(baseURL string, p Provider, timeout time.Duration) *Client {
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		provider: p,
	}
}

// Provider returns the variant this client dispatches to.
func (c *Client) Provider() Provider {
	return c.provider
}

// Predict POSTs the request to {base}/predict and runs the response through
// the validation boundary. No retry on this path; a resubmission races the
// in-flight request instead of cancelling it.
func (c *Client) Predict(ctx context.Context, req types.PredictionRequest) (types.PredictionResponse, error) {
	var out types.PredictionResponse

	if err := req.Validate(); err != nil {
		return out, &ValidationError{Err: err}
	}

	requestID := uuid.NewString()
	timer := logger.StartOperation(ctx, "predict", "request_id", requestID, "provider", c.provider.Name)
	ctx = timer.GetContext()
	logger.Dispatch(ctx, requestID, c.provider.Name, "prediction", requestTarget(req))

	resp, err := c.api.POST(ctx, c.provider.BasePath+"/predict", req, requestHeaders(requestID))
	if err != nil {
		timer.EndWithError(err)
		return out, classify(err)
	}

	if err := decodePrediction(resp, &out); err != nil {
		timer.EndWithError(err)
		return out, err
	}

	timer.End("prediction", out.Prediction)
	logger.Prediction(ctx, requestID, requestTarget(req), out.Prediction, out.ProbabilityUp)
	return out, nil
}

// PredictWithRetry retries transient failures with exponential backoff. The
// dashboard never uses it; it serves the one-shot reporter's -retries flag.
func (c *Client) PredictWithRetry(ctx context.Context, req types.PredictionRequest, attempts int) (types.PredictionResponse, error) {
	var out types.PredictionResponse

	if attempts <= 1 {
		return c.Predict(ctx, req)
	}
	if err := req.Validate(); err != nil {
		return out, &ValidationError{Err: err}
	}

	requestID := uuid.NewString()
	logger.Dispatch(ctx, requestID, c.provider.Name, "prediction", requestTarget(req), "attempts", attempts)

	apiReq := api.NewRequest(http.MethodPost, c.provider.BasePath+"/predict").
		WithContext(ctx).
		WithBody(req).
		WithHeader("X-Request-ID", requestID)

	retry := api.DefaultRetryConfig()
	retry.MaxAttempts = attempts

	resp, err := c.api.DoWithRetry(apiReq, retry)
	if err != nil {
		return out, classify(err)
	}
	if err := decodePrediction(resp, &out); err != nil {
		return out, err
	}

	logger.Prediction(ctx, requestID, requestTarget(req), out.Prediction, out.ProbabilityUp)
	return out, nil
}

// MarketMovers fetches the ranked ticker lists. The alpha variant passes the
// API key as a query parameter; the yahoo variant sends none.
func (c *Client) MarketMovers(ctx context.Context, apiKey string) (types.MarketMovers, error) {
	var out types.MarketMovers

	path := c.provider.BasePath + "/market-movers"
	if c.provider.RequiresKey {
		path += "?api_key=" + url.QueryEscape(apiKey)
	}

	requestID := uuid.NewString()
	timer := logger.StartOperation(ctx, "market-movers", "request_id", requestID, "provider", c.provider.Name)
	ctx = timer.GetContext()
	logger.Dispatch(ctx, requestID, c.provider.Name, "movers", "")

	resp, err := c.api.GET(ctx, path, requestHeaders(requestID))
	if err != nil {
		timer.EndWithError(err)
		return out, classify(err)
	}

	if err := resp.ParseJSON(&out); err != nil {
		timer.EndWithError(err)
		return out, fmt.Errorf("movers payload: %w", err)
	}
	if err := out.Validate(); err != nil {
		timer.EndWithError(err)
		return out, &ValidationError{Err: err}
	}

	timer.End("gainers", len(out.TopGainers), "losers", len(out.TopLosers))
	return out, nil
}

// News fetches scored articles for a symbol. Only the yahoo variant exposes
// the endpoint; callers gate on Provider.SupportsNews.
func (c *Client) News(ctx context.Context, symbol string) (types.NewsResponse, error) {
	var out types.NewsResponse

	if !c.provider.SupportsNews {
		return out, fmt.Errorf("provider '%s' has no news endpoint", c.provider.Name)
	}

	requestID := uuid.NewString()
	timer := logger.StartOperation(ctx, "news", "request_id", requestID, "symbol", symbol)
	ctx = timer.GetContext()
	logger.Dispatch(ctx, requestID, c.provider.Name, "news", symbol)

	resp, err := c.api.GET(ctx, c.provider.BasePath+"/news?symbol="+url.QueryEscape(symbol), requestHeaders(requestID))
	if err != nil {
		timer.EndWithError(err)
		return out, classify(err)
	}

	if err := resp.ParseJSON(&out); err != nil {
		timer.EndWithError(err)
		return out, fmt.Errorf("news payload: %w", err)
	}
	if err := out.Validate(); err != nil {
		timer.EndWithError(err)
		return out, &ValidationError{Err: err}
	}

	timer.End("articles", len(out.Articles))
	return out, nil
}

// decodePrediction parses a 2xx body and runs the validation boundary.
func decodePrediction(resp *api.Response, out *types.PredictionResponse) error {
	if err := resp.ParseJSON(out); err != nil {
		return fmt.Errorf("prediction payload: %w", err)
	}
	if err := out.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// classify turns transport errors into the taxonomy the UI consumes:
// non-2xx statuses become APIError with any detail the body carried,
// network failures stay wrapped.
func classify(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return err
	}

	var body types.ErrorBody
	detail := ""
	if jsonErr := json.Unmarshal(se.Body, &body); jsonErr == nil {
		detail = body.Detail
	}
	return &APIError{Status: se.StatusCode, Detail: detail}
}

func requestHeaders(requestID string) map[string]string {
	return map[string]string{"X-Request-ID": requestID}
}

func requestTarget(req types.PredictionRequest) string {
	if req.Symbol != "" {
		return req.Symbol
	}
	return req.BaseCurrency + "/" + req.QuoteCurrency
}
