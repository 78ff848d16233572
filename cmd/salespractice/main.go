// Command salespractice serves the sales practice API: simulated customer
// conversations, pitch scoring, pre-call research and speech round-trips.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/salespractice/internal/api"
	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/internal/coach"
	"github.com/MrWong99/salespractice/internal/config"
	"github.com/MrWong99/salespractice/internal/feedback"
	"github.com/MrWong99/salespractice/internal/health"
	"github.com/MrWong99/salespractice/internal/mcpserver"
	"github.com/MrWong99/salespractice/internal/observe"
	"github.com/MrWong99/salespractice/internal/research"
	"github.com/MrWong99/salespractice/internal/session"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults apply when empty)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "salespractice: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "salespractice: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := observe.NewLogger(os.Stderr, cfg.Server.LogLevel.Level(), string(cfg.Server.LogFormat))
	slog.SetDefault(logger)

	slog.Info("salespractice starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, telemetryConfig(cfg))
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	logger.Debug("providers registered", "names", reg.Names())
	ps, err := buildProviders(cfg, reg, logger)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	cat := catalog.Default()
	if path := cfg.Catalog.Path; path != "" {
		f, err := catalog.LoadFile(path)
		if err != nil {
			slog.Error("failed to load catalog", "path", path, "err", err)
			return 1
		}
		if cat, err = cat.Merge(f); err != nil {
			slog.Error("failed to merge catalog", "path", path, "err", err)
			return 1
		}
	}

	// ── Coach ─────────────────────────────────────────────────────────────────
	opts := []coach.Option{
		coach.WithParams(cfg.Coach.Params),
		coach.WithParser(feedback.NewParser(feedback.Policy{
			DefaultScore:          cfg.Coach.DefaultScore,
			DefaultCriterionScore: cfg.Coach.DefaultCriterionScore,
		})),
		coach.WithMetrics(metrics),
		coach.WithLogger(logger),
	}
	if ps.stt != nil {
		opts = append(opts, coach.WithSTT(ps.stt))
	}
	if ps.tts != nil {
		opts = append(opts, coach.WithTTS(ps.tts))
	}
	if cfg.Research.FetchURLs {
		opts = append(opts, coach.WithFetcher(research.NewFetcher(
			research.WithHTTPClient(&http.Client{Timeout: cfg.Research.FetchTimeout}),
			research.WithMaxBytes(cfg.Research.MaxBytes),
		)))
	}
	c, err := coach.New(ps.llm, opts...)
	if err != nil {
		slog.Error("failed to create coach", "err", err)
		return 1
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	apiOpts := []api.Option{
		api.WithHealth(health.New(ps.checks...)),
		api.WithMetrics(metrics),
		api.WithPrometheus(promhttp.Handler()),
		api.WithStaticDir(cfg.Server.StaticDir),
		api.WithCORS(cfg.Server.CORSOrigins...),
		api.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		api.WithLogger(logger),
	}
	var sessions *session.Manager
	if cfg.Sessions.Enabled {
		sessions = session.NewManager(c, cat,
			session.WithIdleTimeout(cfg.Sessions.IdleTimeout),
			session.WithMetrics(metrics),
			session.WithLogger(logger),
		)
		apiOpts = append(apiOpts, api.WithSessions(sessions))
	}
	if cfg.MCP.Enabled {
		tools := mcpserver.New(c, cat, version,
			mcpserver.WithMetrics(metrics),
			mcpserver.WithLogger(logger),
		)
		apiOpts = append(apiOpts, api.WithMCP(cfg.MCP.Path, tools.Handler()))
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.New(c, cat, apiOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	printStartupSummary(cfg, c)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tls := cfg.Server.TLS; tls != nil {
			err = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	})
	if sessions != nil {
		g.Go(func() error { return sessions.Run(gctx) })
	}

	slog.Info("server ready, press Ctrl+C to shut down")

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	code := 0
	if err := g.Wait(); err != nil {
		slog.Error("run error", "err", err)
		code = 1
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTelemetry(flushCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return code
}

// loadConfig reads path, or returns validated defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromReader(strings.NewReader(""))
	}
	return config.Load(path)
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, c *coach.Coach) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║     Sales practice, startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("STT", enabledName(cfg.Providers.STT.Name, c.HasSTT()), cfg.Providers.STT.Model)
	printProvider("TTS", enabledName(cfg.Providers.TTS.Name, c.HasTTS()), cfg.Providers.TTS.Model)
	printToggle("Sessions", cfg.Sessions.Enabled, cfg.Sessions.IdleTimeout.String())
	printToggle("MCP", cfg.MCP.Enabled, cfg.MCP.Path)
	fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func enabledName(name string, ok bool) string {
	if ok {
		return name
	}
	return ""
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

func printToggle(kind string, on bool, detail string) {
	value := "(disabled)"
	if on {
		value = detail
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

func telemetryConfig(cfg *config.Config) observe.ProviderConfig {
	return observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	}
}
