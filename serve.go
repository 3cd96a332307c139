package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"transcript-api/config"
	_ "transcript-api/docs"
	"transcript-api/handlers"
	"transcript-api/internal/healthsrv"
	"transcript-api/internal/transcript"
	"transcript-api/middleware"
	"transcript-api/utils"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcript HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			supplier, err := ctx.supplier(log)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.Addr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Addr(), err)
			}

			srv := &server{
				cfg:        cfg,
				log:        log,
				supplier:   supplier,
				configPath: ctx.configPath(),
				levelFlag:  strings.TrimSpace(*ctx.logLevelFlag),
			}
			return srv.run(runCtx, ln)
		},
	}
}

type server struct {
	cfg        *config.Config
	log        *logrus.Logger
	supplier   handlers.TranscriptSupplier
	configPath string
	levelFlag  string
}

// run serves HTTP on ln, plus gRPC health checks when configured, until ctx
// is done. It then reports NOT_SERVING and shuts fiber down gracefully.
func (s *server) run(ctx context.Context, ln net.Listener) error {
	h := handlers.NewApplicationHandler(
		s.supplier,
		transcript.NewOptimizer(s.cfg.Optimizer.MinOverlapTokens),
		s.log,
		s.cfg.Server.PublicURL,
	)
	app, err := newApp(s.cfg, h, s.log)
	if err != nil {
		ln.Close()
		return err
	}

	var health *healthsrv.Server
	healthDone := make(chan error, 1)
	if port := s.cfg.Server.GRPCHealthPort; port > 0 {
		hl, err := net.Listen("tcp", ":"+strconv.Itoa(port))
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen on grpc health port %d: %w", port, err)
		}
		health = healthsrv.New(s.log)
		go func() { healthDone <- health.Serve(ctx, hl) }()
	} else {
		healthDone <- nil
	}

	if s.configPath != "" {
		w, err := config.NewWatcher(s.configPath, s.log)
		if err != nil {
			s.log.WithError(err).Warn("Config reload disabled")
		} else {
			go w.Run(ctx, s.applyConfig)
		}
	}

	httpDone := make(chan error, 1)
	go func() { httpDone <- app.Listener(ln) }()

	if health != nil {
		health.SetServing(true)
	}
	s.log.WithFields(logrus.Fields{
		"addr":             ln.Addr().String(),
		"grpc_health_port": s.cfg.Server.GRPCHealthPort,
		"rate_limits":      s.cfg.RateLimit.Enabled,
	}).Info("Transcript API listening")

	select {
	case err := <-httpDone:
		if health != nil {
			health.SetServing(false)
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	if health != nil {
		health.SetServing(false)
	}
	if err := app.ShutdownWithTimeout(s.cfg.Server.ShutdownTimeout()); err != nil {
		s.log.WithError(err).Warn("HTTP shutdown did not finish cleanly")
	}
	<-httpDone
	return <-healthDone
}

// applyConfig applies the settings that can change without a restart.
func (s *server) applyConfig(cfg *config.Config) {
	logging := cfg.Logging
	if s.levelFlag != "" {
		logging.Level = s.levelFlag
	}
	if err := config.ApplyLogging(s.log, logging); err != nil {
		s.log.WithError(err).Warn("Ignoring logging change")
	}
}

// newApp builds the fiber app with middleware and routes. /health is
// registered ahead of the rate limiters so probes are never throttled.
func newApp(cfg *config.Config, h *handlers.ApplicationHandler, log *logrus.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:               "transcript-api",
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: middleware.HeaderRequestID,
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", h.Health)

	var routeLimits []fiber.Handler
	if cfg.RateLimit.Enabled {
		global, err := config.ParseRules(cfg.RateLimit.Global)
		if err != nil {
			return nil, err
		}
		for _, limit := range middleware.RateLimiters(global, log) {
			app.Use(limit)
		}

		perRoute, err := config.ParseRules(cfg.RateLimit.Transcript)
		if err != nil {
			return nil, err
		}
		routeLimits = middleware.RateLimiters(perRoute, log)
	}

	app.Get("/openapi.json", h.OpenAPI)
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := app.Group("/api")
	api.Get("/hello", h.Hello)
	api.Get("/transcript", withLimits(routeLimits, h.GetTranscript)...)
	api.Get("/tracks", withLimits(routeLimits, h.ListTracks)...)

	return app, nil
}

func withLimits(limits []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(limits)+1)
	chain = append(chain, limits...)
	return append(chain, handler)
}
