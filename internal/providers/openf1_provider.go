package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/models/dtos"
)

// maxBodyBytes caps a single upstream response; full-session car_data
// arrays are large but stay well below this.
const maxBodyBytes = 64 << 20

// OpenF1Options configures an OpenF1Provider.
type OpenF1Options struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles all outgoing calls. Zero disables throttling.
	RequestsPerSecond float64
	// FailureThreshold consecutive failures open the circuit breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	Metrics     *metrics.MetricsRegistry
}

// OpenF1Provider implements TelemetryProvider for the OpenF1 REST API.
type OpenF1Provider struct {
	BaseURL string
	Client  *http.Client

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.MetricsRegistry
}

var _ TelemetryProvider = (*OpenF1Provider)(nil)

// NewOpenF1Provider creates a provider with a throttled, circuit-broken client.
func NewOpenF1Provider(opts OpenF1Options) *OpenF1Provider {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 15 * time.Second
	}

	p := &OpenF1Provider{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Client:  &http.Client{Timeout: opts.Timeout},
		metrics: opts.Metrics,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	p.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "openf1",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		// A missing resource or a malformed payload says nothing about availability.
		IsSuccessful: func(err error) bool {
			var pe *ProviderError
			if errors.As(err, &pe) {
				return pe.Code == constants.ErrCodeResourceNotFound
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Upstream circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return p
}

// GetProviderType returns the provider type identifier
func (p *OpenF1Provider) GetProviderType() string {
	return "openf1"
}

func (p *OpenF1Provider) GetSessions(ctx context.Context) ([]dtos.Session, error) {
	var sessions []dtos.Session
	if err := p.doGET(ctx, "sessions", "/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (p *OpenF1Provider) GetPositions(ctx context.Context, sessionKey int) ([]dtos.RawPosition, error) {
	if sessionKey <= 0 {
		return nil, invalidArgument("session key must be positive")
	}

	var positions []dtos.RawPosition
	endpoint := "/position?session_key=" + strconv.Itoa(sessionKey)
	if err := p.doGET(ctx, "position", endpoint, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (p *OpenF1Provider) GetDrivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error) {
	if sessionKey <= 0 {
		return nil, invalidArgument("session key must be positive")
	}

	var drivers []dtos.Driver
	endpoint := "/drivers?session_key=" + strconv.Itoa(sessionKey)
	if err := p.doGET(ctx, "drivers", endpoint, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (p *OpenF1Provider) GetCarData(ctx context.Context, sessionKey, driverNumber int, since time.Time) ([]dtos.CarData, error) {
	if sessionKey <= 0 {
		return nil, invalidArgument("session key must be positive")
	}

	endpoint := "/car_data?session_key=" + strconv.Itoa(sessionKey)
	if driverNumber > 0 {
		endpoint += "&driver_number=" + strconv.Itoa(driverNumber)
	}
	// OpenF1 filters use the raw operator in the key, e.g. date>=2024-03-02T15:00:00Z
	if !since.IsZero() {
		endpoint += "&date>=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}

	var samples []dtos.CarData
	if err := p.doGET(ctx, "car_data", endpoint, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// doGET throttles, runs the request through the circuit breaker and decodes
// the JSON array into result.
func (p *OpenF1Provider) doGET(ctx context.Context, resource, endpoint string, result interface{}) error {
	start := time.Now()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return &ProviderError{
				Code:    constants.ErrCodeRateLimited,
				Message: "Waiting for upstream rate limiter",
				Err:     err,
			}
		}
	}

	body, err := p.breaker.Execute(func() ([]byte, error) {
		return p.fetch(ctx, endpoint)
	})
	if emptyResult(err) {
		body, err = []byte("[]"), nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &ProviderError{
			Code:    constants.ErrCodeCircuitOpen,
			Message: constants.GetErrorMessage(constants.ErrCodeCircuitOpen),
			Err:     err,
		}
	}

	if err == nil {
		if decodeErr := json.Unmarshal(body, result); decodeErr != nil {
			err = &ProviderError{
				Code:    constants.ErrCodeInvalidDataFormat,
				Message: "Failed to decode response from " + endpoint,
				Details: truncate(string(body), 512),
				Err:     decodeErr,
			}
		}
	}

	p.observe(resource, start, err)
	return err
}

func (p *OpenF1Provider) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}
	return bodyBytes, nil
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	code := constants.ErrCodeBadStatus
	message := fmt.Sprintf("HTTP %d from %s", statusCode, endpoint)

	switch statusCode {
	case http.StatusNotFound:
		code = constants.ErrCodeResourceNotFound
		message = fmt.Sprintf("Resource not found: %s", endpoint)
	case http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
		message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	}

	return &ProviderError{
		Code:       code,
		Message:    message,
		Details:    truncate(body, 512),
		StatusCode: statusCode,
	}
}

func (p *OpenF1Provider) observe(resource string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var pe *ProviderError
		if errors.As(err, &pe) {
			outcome = strings.ToLower(pe.Code)
		}
	}
	p.metrics.UpstreamRequestsTotal.WithLabelValues(resource, outcome).Inc()
	p.metrics.UpstreamRequestDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
}

// emptyResult reports OpenF1's 404 for a query that matched no rows.
func emptyResult(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) &&
		pe.Code == constants.ErrCodeResourceNotFound &&
		strings.Contains(pe.Details, "No results found")
}

func invalidArgument(message string) error {
	return &ProviderError{
		Code:    constants.ErrCodeInvalidDataFormat,
		Message: message,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
