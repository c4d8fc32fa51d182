package distancematrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/pkg/config"
	"github.com/samirrijal/shipquote/internal/pkg/resilience"
	"github.com/samirrijal/shipquote/internal/pkg/telemetry"
)

const statusOK = "OK"

// ErrStatus is returned when the provider answers with a non-OK status.
var ErrStatus = errors.New("distance matrix status not OK")

// Client implements ports.RemoteDistanceProvider against a Google-compatible
// Distance Matrix endpoint.
type Client struct {
	cfg     config.DistanceConfig
	timeout time.Duration
	http    *fasthttp.Client
	breaker *resilience.CircuitBreaker
}

// New builds a client. Calls go through a circuit breaker configured from cfg.Breaker.
func New(cfg config.DistanceConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig("distance-matrix")
	if cfg.Breaker.MaxRequests > 0 {
		breakerCfg.MaxRequests = cfg.Breaker.MaxRequests
	}
	if cfg.Breaker.Interval > 0 {
		breakerCfg.Interval = time.Duration(cfg.Breaker.Interval) * time.Second
	}
	if cfg.Breaker.Timeout > 0 {
		breakerCfg.Timeout = time.Duration(cfg.Breaker.Timeout) * time.Second
	}
	if cfg.Breaker.FailureThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.Breaker.FailureThreshold
	}

	return &Client{
		cfg:     cfg,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "shipquote",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(breakerCfg, logger),
	}
}

// Configured reports whether a provider URL and a usable API key are set.
func (c *Client) Configured() bool {
	return c.cfg.ProviderURL != "" && c.cfg.RemoteDistanceEnabled()
}

// BreakerState exposes the breaker state for readiness reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// Matrix returns the road distance and duration from src to dst.
func (c *Client) Matrix(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "distancematrix.Matrix",
		attribute.String("origin", src.String()),
		attribute.String("destination", dst.String()),
	)
	defer span.End()

	out, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.fetch(ctx, src, dst)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.DistanceResult{}, err
	}
	return out.(domain.DistanceResult), nil
}

func (c *Client) fetch(ctx context.Context, src, dst domain.Coordinate) (domain.DistanceResult, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.requestURI(src, dst))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.DistanceResult{}, ctxErr
		}
		return domain.DistanceResult{}, fmt.Errorf("distance matrix request: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return domain.DistanceResult{}, fmt.Errorf("distance matrix http %d", code)
	}

	return parse(resp.Body())
}

func (c *Client) requestURI(src, dst domain.Coordinate) string {
	q := url.Values{}
	q.Set("origins", src.String())
	q.Set("destinations", dst.String())
	q.Set("units", "metric")
	q.Set("key", c.cfg.APIKey)
	return c.cfg.ProviderURL + "?" + q.Encode()
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

type matrixElement struct {
	Status   string      `json:"status"`
	Distance matrixValue `json:"distance"`
	Duration matrixValue `json:"duration"`
}

type matrixValue struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// parse converts a matrix body into a result. Meters become kilometers and
// seconds become whole minutes, truncated.
func parse(body []byte) (domain.DistanceResult, error) {
	var mr matrixResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return domain.DistanceResult{}, fmt.Errorf("decode distance matrix: %w", err)
	}
	if mr.Status != statusOK {
		return domain.DistanceResult{}, fmt.Errorf("%w: %s %s", ErrStatus, mr.Status, mr.ErrorMessage)
	}
	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return domain.DistanceResult{}, fmt.Errorf("distance matrix: empty rows")
	}

	el := mr.Rows[0].Elements[0]
	if el.Status != statusOK {
		return domain.DistanceResult{}, fmt.Errorf("%w: element %s", ErrStatus, el.Status)
	}
	if el.Distance.Value < 0 || el.Duration.Value < 0 {
		return domain.DistanceResult{}, fmt.Errorf("distance matrix: negative value in element")
	}

	return domain.DistanceResult{
		DistanceKm:      domain.Round2(el.Distance.Value / 1000),
		DurationMinutes: int(el.Duration.Value) / 60,
		Strategy:        domain.StrategyRemote,
	}, nil
}
