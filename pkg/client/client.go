// Package client dispatches authenticated JSON requests to the cloud server
// and reports classified outcomes through callbacks, without blocking the
// caller.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sternrassler/lostnfound-cloud-client/pkg/logging"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/loop"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/request"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/response"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/route"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for cloud client operations.
var (
	cloudRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloud_requests_total",
		Help: "Total cloud requests by route and outcome",
	}, []string{"route", "outcome"})

	cloudRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cloud_request_duration_seconds",
		Help:    "Cloud network call duration in seconds by route, excluding the dispatch delay",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"route"})

	cloudTasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cloud_tasks_in_flight",
		Help: "Number of dispatched tasks that have not completed yet",
	})
)

const (
	// DefaultDelay is slept before every network call to throttle rapid-fire
	// UI actions.
	DefaultDelay = 1000 * time.Millisecond

	// DefaultHTTPTimeout is the timeout of the default HTTP client.
	DefaultHTTPTimeout = 30 * time.Second
)

// PreExecuteFunc runs on the caller's goroutine before any network activity.
type PreExecuteFunc func()

// PostExecuteFunc receives the outcome on the caller's context.
// envelope is nil when no structured reply is available.
type PostExecuteFunc func(outcome response.Outcome, envelope *response.Envelope)

// Client is the cloud request dispatcher.
type Client struct {
	httpClient *http.Client
	builder    *request.Builder
	poster     loop.Poster
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Routes resolves destinations to URLs.
	Routes route.Table

	// AuthData supplies the credential blob attached to every request.
	// Nil sends "auth_data": null.
	AuthData request.AuthDataProvider

	// HTTPClient performs the network call.
	HTTPClient *http.Client

	// Poster delivers completion callbacks. Use a *loop.Loop to receive them
	// on the caller's goroutine. The default, loop.Direct, runs them on the
	// task's worker goroutine instead.
	Poster loop.Poster

	// Delay before each network call.
	Delay time.Duration

	// OnStateChange observes every task transition (optional). It is called
	// on the goroutine that performs the transition.
	OnStateChange func(taskID string, state State)
}

// DefaultConfig returns the default configuration for a server address.
//
// Its Poster is loop.Direct, so completions run on the worker goroutine and
// not on the caller's. Set Poster to the caller's *loop.Loop when callbacks
// must run there.
func DefaultConfig(serverAddress string, auth request.AuthDataProvider) Config {
	return Config{
		Routes:   route.NewTable(serverAddress),
		AuthData: auth,
		HTTPClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
		},
		Poster: loop.Direct{},
		Delay:  DefaultDelay,
	}
}

// New creates a new cloud client.
func New(cfg Config) (*Client, error) {
	if cfg.Routes.BaseURL == "" {
		return nil, fmt.Errorf("server address is required")
	}

	if cfg.HTTPClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	if cfg.Poster == nil {
		return nil, fmt.Errorf("poster is required")
	}

	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delay must be >= 0 (got %s)", cfg.Delay)
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		builder:    request.NewBuilder(cfg.AuthData),
		poster:     cfg.Poster,
		config:     cfg,
		logger:     logging.NewLogger("cloud-client"),
	}, nil
}

// Upload dispatches a request to an upload route.
func (c *Client) Upload(dest route.Upload, payload request.Payload, pre PreExecuteFunc, post PostExecuteFunc) *Task {
	return c.Dispatch(dest, payload, pre, post)
}

// Download dispatches a request to a download route.
func (c *Client) Download(dest route.Download, payload request.Payload, pre PreExecuteFunc, post PostExecuteFunc) *Task {
	return c.Dispatch(dest, payload, pre, post)
}

// Auth dispatches a request to an authentication route.
func (c *Client) Auth(dest route.Authentication, payload request.Payload, pre PreExecuteFunc, post PostExecuteFunc) *Task {
	return c.Dispatch(dest, payload, pre, post)
}

// Dispatch builds the request on the calling goroutine, runs pre, and sends
// the request in the background. post is delivered through the configured
// Poster. Dispatch never blocks on the network and never fails; every error
// is reported as an outcome.
func (c *Client) Dispatch(dest route.Destination, payload request.Payload, pre PreExecuteFunc, post PostExecuteFunc) *Task {
	task := newTask(dest, c.config.OnStateChange)

	wire, buildErr := c.builder.Build(context.Background(), c.config.Routes.URL(dest), payload)

	task.transition(StatePreExecute)
	if pre != nil {
		pre()
	}

	cloudTasksInFlight.Inc()
	go c.run(task, wire, buildErr, post)

	return task
}

// run is the background half of a task.
func (c *Client) run(task *Task, wire *request.WireRequest, buildErr error, post PostExecuteFunc) {
	task.transition(StateRunning)

	outcome, envelope := c.execute(task, wire, buildErr)

	cloudTasksInFlight.Dec()
	cloudRequestsTotal.WithLabelValues(task.dest.Path(), string(outcome)).Inc()

	deliver := func() {
		task.complete(outcome, envelope, post)
	}
	if err := c.poster.Post(deliver); err != nil {
		c.logger.Warn().
			Err(err).
			Str("task_id", task.ID()).
			Msg("Caller context rejected completion, delivering on worker goroutine")
		deliver()
	}
}

// execute performs the delayed network call and turns every result into an
// outcome. It never panics.
func (c *Client) execute(task *Task, wire *request.WireRequest, buildErr error) (outcome response.Outcome, envelope *response.Envelope) {
	logger := logging.ForTask(c.logger, task.ID(), task.dest.Path())

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Request execution panicked")
			outcome, envelope = response.OtherClientError, nil
		}
	}()

	if buildErr != nil {
		logger.Warn().Err(buildErr).Msg("Request build failed")
		return response.OtherClientError, nil
	}

	time.Sleep(c.config.Delay)

	req, err := wire.HTTPRequest(context.Background())
	if err != nil {
		logger.Warn().Err(err).Str("url", wire.URL).Msg("Invalid request")
		return response.OtherClientError, nil
	}

	logger.Debug().
		Str("url", wire.URL).
		Int("body_bytes", len(wire.Body)).
		Msg("Executing cloud request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := c.classifyError(err)
		logger.Warn().Err(err).Str("outcome", string(kind)).Msg("Cloud request failed")
		return kind, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	cloudRequestDuration.WithLabelValues(task.dest.Path()).Observe(time.Since(startTime).Seconds())
	if err != nil {
		kind := c.classifyError(err)
		logger.Warn().Err(err).Str("outcome", string(kind)).Msg("Reading cloud response failed")
		return kind, nil
	}

	obj, err := response.Decode(body)
	if err != nil {
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Unreadable cloud response")
		return response.OtherClientError, nil
	}

	code, err := obj.Code()
	if err != nil {
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Unreadable cloud response")
		return response.OtherClientError, nil
	}

	outcome = response.Classify(code)
	envelope = response.Parse(obj)
	if envelope == nil {
		// The outcome is still trusted; callers just get no structured data.
		logger.Debug().Int("code", code).Msg("Envelope parse failed")
	}

	logger.Info().
		Int("status", resp.StatusCode).
		Int("code", code).
		Str("outcome", string(outcome)).
		Dur("duration", time.Since(startTime)).
		Msg("Cloud request completed")

	return outcome, envelope
}
