package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/norrisp90/HL7SyntGen/internal/config"
	"github.com/norrisp90/HL7SyntGen/internal/domain/healthlink"
	"github.com/norrisp90/HL7SyntGen/internal/platform/analytics"
	"github.com/norrisp90/HL7SyntGen/internal/platform/middleware"
	"github.com/norrisp90/HL7SyntGen/internal/platform/narrative"
	"github.com/norrisp90/HL7SyntGen/internal/platform/openapi"
	"github.com/norrisp90/HL7SyntGen/internal/platform/telemetry"
)

const serviceName = "hl7syntgen"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     serviceName,
		Short:   "Synthetic HealthLink HL7 v2 XML message generator",
		Version: version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate messages to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generateOptions{}
			opts.typeID, _ = cmd.Flags().GetInt("type")
			opts.count, _ = cmd.Flags().GetInt("count")
			opts.format, _ = cmd.Flags().GetString("format")
			opts.framing, _ = cmd.Flags().GetBool("framing")
			opts.seed, _ = cmd.Flags().GetInt64("seed")
			opts.workers, _ = cmd.Flags().GetInt("workers")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.RandomSeed = opts.seed
			} else {
				opts.seed = cfg.RandomSeed
			}

			// Diagnostics go to stderr so stdout carries only messages.
			logger := newLogger(cfg, os.Stderr)
			assembler, err := newAssembler(cfg, logger, nil)
			if err != nil {
				return err
			}
			opts.usage = analytics.NewUsageTracker(opts.count)
			start := time.Now()
			if err := runGenerate(cmd.Context(), assembler, opts, cmd.OutOrStdout()); err != nil {
				return err
			}
			o := opts.usage.Overview()
			logger.Info().
				Int64("generated", o.TotalGenerated).
				Int64("bytes_out", o.BytesOut).
				Dur("avg_build", o.AvgLatency).
				Dur("elapsed", time.Since(start)).
				Msg("generation complete")
			return nil
		},
	}
	cmd.Flags().Int("type", 0, "Message type id (1-31); 0 picks one at random per message")
	cmd.Flags().Int("count", 1, "Number of messages to generate")
	cmd.Flags().String("format", "xml", "Output format: xml, raw or json")
	cmd.Flags().Bool("framing", false, "Wrap each message in TCP framing bytes")
	cmd.Flags().Int64("seed", 0, "Random seed; 0 seeds from the clock")
	cmd.Flags().Int("workers", runtime.NumCPU(), "Messages built concurrently")
	return cmd
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the supported message types",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return writeCatalog(cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().String("output", "yaml", "Output format: yaml or json")
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize messages written by generate (xml or raw, framed or not)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runInspect(in, cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().String("output", "yaml", "Output format: yaml or json")
	return cmd
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// newMetrics builds the telemetry provider for the server.
func newMetrics(cfg *config.Config) *telemetry.Provider {
	return telemetry.NewProvider(telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		MetricsEnabled: telemetry.BoolPtr(cfg.MetricsEnabled),
	})
}

// newAssembler wires the value source and, when configured, the narrative
// provider. metrics may be nil.
func newAssembler(cfg *config.Config, logger zerolog.Logger, metrics *telemetry.Provider) (*healthlink.Assembler, error) {
	var provider narrative.Provider
	client, err := narrative.NewAzureClient(narrative.AzureConfig{
		Endpoint:          cfg.AzureOpenAIEndpoint,
		APIKey:            cfg.AzureOpenAIAPIKey,
		APIVersion:        cfg.AzureOpenAIAPIVersion,
		Deployment:        cfg.AzureOpenAIDeployment,
		RequestsPerSecond: cfg.NarrativeRPS,
		Burst:             cfg.NarrativeBurst,
	})
	switch {
	case errors.Is(err, narrative.ErrUnavailable):
		logger.Info().Msg("narrative provider not configured, using local text")
	case err != nil:
		return nil, fmt.Errorf("narrative provider: %w", err)
	default:
		provider = client
		logger.Info().Str("deployment", cfg.AzureOpenAIDeployment).Msg("narrative provider enabled")
	}

	var opts []narrative.ResolverOption
	if metrics != nil {
		opts = append(opts, narrative.WithObserver(func(k narrative.Kind, o narrative.Outcome, elapsed time.Duration) {
			metrics.ObserveNarrative(string(k), string(o), elapsed)
		}))
	}
	resolver := narrative.NewResolver(provider, cfg.NarrativeTimeout, logger, opts...)
	return healthlink.NewAssembler(
		healthlink.NewRandSource(cfg.RandomSeed),
		healthlink.WithNarrative(resolver),
		healthlink.WithLogger(logger),
	), nil
}

// newServer builds the echo instance with middleware and routes.
func newServer(cfg *config.Config, logger zerolog.Logger, assembler *healthlink.Assembler, metrics *telemetry.Provider) *echo.Echo {
	usage := analytics.NewUsageTracker(cfg.StatsRetention)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.ResponseHeaders(serviceName))

	e.GET("/metrics", metrics.PrometheusHandler())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"message":   "HL7 SyntGen API is running",
		})
	})

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	}))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	healthlink.NewHandler(assembler, logger, healthlink.WithUsageTracker(usage)).RegisterRoutes(apiV1)
	analytics.NewUsageHandler(usage).RegisterRoutes(apiV1)

	docs := openapi.NewGenerator("HL7 SyntGen API", version, "http://localhost:"+cfg.Port)
	docs.AddOperation(openapi.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		OperationID: "health",
		Summary:     "Liveness check",
		Tag:         "system",
		Responses: map[int]openapi.Response{
			http.StatusOK: {Description: "Service is running", Content: map[string]string{"application/json": ""}},
		},
	})
	docs.AddOperation(openapi.Operation{
		Method:      http.MethodGet,
		Path:        "/metrics",
		OperationID: "metrics",
		Summary:     "Prometheus metrics",
		Tag:         "system",
		Responses: map[int]openapi.Response{
			http.StatusOK: {Description: "Text exposition format", Content: map[string]string{"text/plain": ""}},
		},
	})
	healthlink.DescribeAPI(docs)
	analytics.DescribeAPI(docs)
	docs.RegisterRoutes(apiV1, "/api/v1")
	return e
}

// jsonErrorHandler renders errors as {"error": "..."}.
func jsonErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	metrics := newMetrics(cfg)
	assembler, err := newAssembler(cfg, logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up message assembler")
	}

	e := newServer(cfg, logger, assembler, metrics)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

type generateOptions struct {
	typeID  int
	count   int
	format  string
	framing bool
	seed    int64
	workers int
	usage   *analytics.UsageTracker
}

// messageSeed derives the seed of message i so seeded runs do not depend on
// which worker builds which message. It never returns 0, which seeds from the
// clock.
func messageSeed(seed int64, i int) int64 {
	if s := seed + int64(i); s != 0 {
		return s
	}
	return math.MinInt64
}

// runGenerate builds count messages concurrently and writes them to out in
// order. Unframed messages are separated by a newline. With a seed set, each
// message draws from its own source and the output is reproducible.
func runGenerate(ctx context.Context, assembler *healthlink.Assembler, opts generateOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	if opts.typeID != 0 {
		if _, err := healthlink.Lookup(opts.typeID); err != nil {
			return err
		}
	}
	format, err := healthlink.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	outputs := make([]*healthlink.Output, opts.count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i := 0; i < opts.count; i++ {
		i := i
		g.Go(func() error {
			asm := assembler
			if opts.seed != 0 {
				asm = assembler.Derive(healthlink.NewRandSource(messageSeed(opts.seed, i)))
			}
			id := opts.typeID
			if id == 0 {
				id = asm.RandomTypeID()
			}
			start := time.Now()
			msg, err := asm.Build(gctx, id)
			if err != nil {
				return fmt.Errorf("message %d: %w", i+1, err)
			}
			o, err := healthlink.Render(msg, format, opts.framing, "")
			opts.usage.Record(healthlink.NewGenerationMetric(msg, format, opts.framing, time.Since(start), o))
			if err != nil {
				return fmt.Errorf("message %d: %w", i+1, err)
			}
			outputs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outputs {
		if _, err := out.Write(o.Body); err != nil {
			return err
		}
		if o.ContentType != healthlink.ContentTypeFramed {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCatalog(out io.Writer, output string) error {
	return writeDocument(out, healthlink.Catalog(), output, "catalog")
}

// runInspect summarizes every message in the output of a generate run.
func runInspect(in io.Reader, out io.Writer, output string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	summaries, err := healthlink.InspectOutput(data)
	if err != nil {
		return err
	}
	return writeDocument(out, summaries, output, "summaries")
}

func writeDocument(out io.Writer, v interface{}, output, what string) error {
	switch output {
	case "yaml", "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", what, err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output %q, use yaml or json", output)
	}
}
