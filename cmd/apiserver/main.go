// API server entry point for chargeview.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/turtacn/chargeview/internal/application/controls"
	"github.com/turtacn/chargeview/internal/bootstrap"
	"github.com/turtacn/chargeview/internal/config"
	"github.com/turtacn/chargeview/internal/engine/scene"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/chargeview/internal/interfaces/http"
	"github.com/turtacn/chargeview/internal/interfaces/http/handlers"
	"github.com/turtacn/chargeview/internal/interfaces/http/middleware"
	"github.com/turtacn/chargeview/internal/viewer"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	corsOrigins := flag.String("cors-origins", "*", "comma separated origins allowed for the API and the event stream")
	flag.Parse()

	if err := run(*configPath, *port, *corsOrigins); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, corsOrigins string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()
	logger = logger.Named("apiserver")
	logging.SetDefault(logger)
	logger.Info("starting chargeview API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()))

	if configPath != "" {
		config.Watch(configPath, func(c *config.Config) {
			if logging.SetLevel(logger, c.Log.Level) {
				logger.Info("log level reloaded", logging.String("level", c.Log.Level))
			}
		}, func(err error) {
			logger.Warn("config reload rejected", logging.Err(err))
		})
	}

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.ViewerMetrics
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics = prometheus.NewViewerMetrics(collector)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	e := scene.New(scene.Options{Fetcher: infra.Fetcher(metrics), Logger: logger})
	v := viewer.New(e, viewer.Options{Logger: logger, Metrics: metrics})
	svc := controls.NewService(controls.FromViewer(v), logger)

	if infra.Producer != nil {
		events, cancel := svc.Subscribe()
		defer cancel()
		publisher := controls.NewEventPublisher(infra.Producer, "chargeview-apiserver", logger).
			WithTopic(cfg.Kafka.Topic).
			WithMetrics(metrics)
		go publisher.Run(ctx, events)
	}

	format, err := vtypes.ParseFormat(cfg.Viewer.DefaultFormat)
	if err != nil {
		return err
	}
	profile, err := vtypes.ParseTargetProfile(cfg.Viewer.DefaultProfile)
	if err != nil {
		return err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = splitList(corsOrigins)

	var cacheHandler *handlers.CacheHandler
	if dc := infra.DownloadCache(); dc != nil {
		cacheHandler = handlers.NewCacheHandler(dc)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ViewerHandler: handlers.NewViewerHandler(svc, v, e, logger, handlers.ViewerHandlerOptions{
			DefaultFormat:  format,
			DefaultProfile: profile,
		}),
		StreamHandler:    handlers.NewStateStreamHandler(svc, cors.OriginChecker(), logger, metrics),
		HealthHandler:    handlers.NewHealthHandler(version, infra.HealthCheckers()...),
		CacheHandler:     cacheHandler,
		CORS:             &cors,
		Logger:           logger,
		MetricsCollector: collector,
		Metrics:          metrics,
		MetricsPath:      cfg.Metrics.Path,
	})

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return srv.Stop(context.Background())
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

//Personal.AI order the ending
