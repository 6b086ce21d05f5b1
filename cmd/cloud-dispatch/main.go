// Command cloud-dispatch sends one request to the cloud server and prints
// the classified outcome.
//
//	cloud-dispatch -route get_founds -payload '{"page": 1}'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Sternrassler/lostnfound-cloud-client/pkg/authdata"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/client"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/config"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/logging"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/loop"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/metrics"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/request"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/response"
	"github.com/Sternrassler/lostnfound-cloud-client/pkg/route"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Exit codes.
const (
	exitOK        = 0
	exitOutcome   = 1
	exitUsage     = 2
	exitInternal  = 3
	exitTransport = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("cloud-dispatch", flag.ContinueOnError)
	fs.SetOutput(stdout)
	routeName := fs.String("route", "", "route name, e.g. get_founds")
	payloadJSON := fs.String("payload", "{}", "JSON object sent as the request body")
	envFile := fs.String("env", ".env", "optional .env file")
	list := fs.Bool("list", false, "list routes and exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *list {
		printRoutes(stdout)
		return exitOK
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stdout, "config: %v\n", err)
		return exitUsage
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("cloud-dispatch")

	dest, err := route.Lookup(*routeName)
	if err != nil {
		fmt.Fprintf(stdout, "%v (use -list)\n", err)
		return exitUsage
	}

	payload, err := parsePayload(*payloadJSON)
	if err != nil {
		fmt.Fprintf(stdout, "payload: %v\n", err)
		return exitUsage
	}

	auth, closeAuth, err := newAuthProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to set up auth data")
		return exitInternal
	}
	defer closeAuth()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	callerLoop := loop.New()

	clientCfg := client.DefaultConfig(cfg.ServerAddress, auth)
	clientCfg.Delay = cfg.Delay
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	clientCfg.Poster = callerLoop

	cloudClient, err := client.New(clientCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create cloud client")
		return exitInternal
	}

	exitCode := exitInternal
	task := cloudClient.Dispatch(dest, payload,
		func() {
			logger.Info().Str("route", dest.Path()).Str("group", string(dest.Group())).Msg("Dispatching request")
		},
		func(outcome response.Outcome, envelope *response.Envelope) {
			printResult(stdout, outcome, envelope)
			switch {
			case outcome == response.OK:
				exitCode = exitOK
			case outcome.Local():
				exitCode = exitTransport
			default:
				exitCode = exitOutcome
			}
		})

	go func() {
		<-task.Done()
		callerLoop.Close()
	}()

	// The task cannot be cancelled; an interrupt only stops waiting for it.
	if err := callerLoop.Run(ctx); err != nil {
		logger.Warn().Err(err).Str("task_id", task.ID()).Msg("Interrupted before completion")
		return exitInternal
	}

	return exitCode
}

func parsePayload(s string) (request.Payload, error) {
	var payload request.Payload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("payload must be a JSON object")
	}
	return payload, nil
}

// newAuthProvider picks the Redis store when configured, else the static blob.
func newAuthProvider(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (request.AuthDataProvider, func(), error) {
	if cfg.RedisURL == "" {
		return authdata.Static{Value: cfg.StaticAuthData()}, func() {}, nil
	}

	opts := &redis.Options{Addr: cfg.RedisURL}
	if strings.Contains(cfg.RedisURL, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Debug().Str("addr", opts.Addr).Msg("Connected to Redis")

	store := authdata.NewRedisStore(redisClient, cfg.AuthDataKey, logging.NewLogger("auth-store"))
	return store, func() { redisClient.Close() }, nil
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func printResult(w io.Writer, outcome response.Outcome, envelope *response.Envelope) {
	fmt.Fprintf(w, "outcome: %s\n", outcome)
	if envelope == nil {
		fmt.Fprintln(w, "envelope: none")
		return
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		fmt.Fprintf(w, "envelope: %v\n", err)
		return
	}
	fmt.Fprintf(w, "envelope: %s\n", data)
}

func printRoutes(w io.Writer) {
	var group route.Group
	for _, d := range route.All() {
		if d.Group() != group {
			group = d.Group()
			fmt.Fprintf(w, "%s:\n", group)
		}
		fmt.Fprintf(w, "  %s\n", d.Path())
	}
}
