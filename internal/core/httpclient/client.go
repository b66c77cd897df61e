package httpclient

import (
	"net/http"
	"time"

	"shipment-status/internal/core/logger"

	"go.uber.org/zap"
)

// retryStatusCodes are the transient statuses worth another attempt.
var retryStatusCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// RetryRoundTripper retries transient failures with exponential backoff.
// Requests with a non-replayable body are never retried.
type RetryRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Backoff is the base delay; attempt n waits Backoff << n.
	Backoff time.Duration
}

// RoundTrip executes the request, retrying on transport errors and on
// transient status codes.
func (rrt *RetryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = rrt.Proxied.RoundTrip(req)

		retryable := err != nil || retryStatusCodes[resp.StatusCode]
		if !retryable || attempt >= rrt.MaxRetries {
			return resp, err
		}

		// Re-arm the body for the next attempt; bail out if we can't.
		if req.Body != nil {
			if req.GetBody == nil {
				return resp, err
			}
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return resp, err
			}
			req.Body = body
		}
		if resp != nil {
			resp.Body.Close()
		}

		delay := rrt.Backoff << attempt
		logger.Get().Debug("Retrying HTTP request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		time.Sleep(delay)
	}
}

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with retry and logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: &RetryRoundTripper{
				Proxied:    http.DefaultTransport,
				MaxRetries: 3,
				Backoff:    300 * time.Millisecond,
			},
		},
		Timeout: timeout,
	}
}
