package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/api/rest"
	"github.com/feral-file/ff-author-checker/internal/api/server"
	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/config"
	"github.com/feral-file/ff-author-checker/internal/expiry"
	"github.com/feral-file/ff-author-checker/internal/job"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/messaging"
	"github.com/feral-file/ff-author-checker/internal/metrics"
	"github.com/feral-file/ff-author-checker/internal/providers/deso"
	"github.com/feral-file/ff-author-checker/internal/providers/jetstream"
	"github.com/feral-file/ff-author-checker/internal/providers/spatium"
	temporal "github.com/feral-file/ff-author-checker/internal/providers/temporal"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Author Checker API")

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(adapter.HTTPClientConfig{
		Timeout:              cfg.HTTP.Timeout,
		RetryInitialInterval: cfg.HTTP.RetryInitialInterval,
		RetryMaxInterval:     cfg.HTTP.RetryMaxInterval,
		RetryMaxElapsedTime:  cfg.HTTP.MaxRetryElapsed,
	})

	// Initialize metrics
	checkMetrics := metrics.New("author_checker", "api", nil)

	// Connect revocation publisher
	var publisher messaging.Publisher
	if cfg.NATS.Enabled() {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:               cfg.NATS.URL,
			StreamName:        cfg.NATS.StreamName,
			StreamSubjects:    []string{cfg.NATS.TriggerSubject, cfg.NATS.RevocationSubject},
			RevocationSubject: cfg.NATS.RevocationSubject,
			MaxReconnects:     cfg.NATS.MaxReconnects,
			ReconnectWait:     cfg.NATS.ReconnectWait,
			ConnectionName:    cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create revocation publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected revocation publisher", zap.String("subject", cfg.NATS.RevocationSubject))
	}

	// Initialize job handler for synchronous runs
	associationChecker := checker.NewChecker(
		checker.Config{
			PlatformPublicKey: cfg.Deso.PlatformPublicKey,
			AssociationType:   cfg.Deso.AssociationType,
			Concurrency:       cfg.Job.Concurrency,
			UnitTimeout:       cfg.Job.UnitTimeout,
		},
		deso.NewClient(httpClient, jsonAdapter, cfg.Deso.NodeURL, cfg.Deso.PageLimit),
		spatium.NewClient(httpClient, cfg.AppService.URL),
		expiry.NewEvaluator(clock, cfg.Expiry.AuthorNFTType),
		publisher,
		checkMetrics,
		clock,
	)
	jobHandler := job.NewHandler(associationChecker, cfg.Job.Timeout)

	// Connect to Temporal with logger integration
	// Without Temporal only synchronous runs are served
	var orchestrator temporal.TemporalOrchestrator
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to connect to Temporal, workflow endpoints disabled",
			zap.Error(err),
			zap.String("host_port", cfg.Temporal.HostPort),
		)
	} else {
		defer temporalClient.Close()
		orchestrator = temporalClient
		logger.InfoCtx(ctx, "Connected to Temporal", zap.String("host_port", cfg.Temporal.HostPort))
	}

	// Create and start server
	handler := rest.NewHandler(rest.HandlerConfig{
		TaskQueue:          cfg.Temporal.TaskQueue,
		WorkflowRunTimeout: cfg.Job.Timeout,
	}, jobHandler, orchestrator)
	srv := server.New(server.Config{
		Debug:              cfg.Debug,
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:        time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, handler, checkMetrics.GinHandler())

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
