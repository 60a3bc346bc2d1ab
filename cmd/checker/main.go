package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-author-checker/internal/adapter"
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
	"github.com/feral-file/ff-author-checker/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	once       = flag.Bool("once", false, "Run a single check and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadCheckerConfig(*configFile, *envPath)
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
			"service": "checker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Author Association Checker",
		zap.String("transactor", cfg.Deso.PlatformPublicKey),
		zap.String("associationType", cfg.Deso.AssociationType),
	)

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
	recorder := metrics.Recorder(metrics.Nop{})
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		m := metrics.New("author_checker", "checker", nil)
		recorder = m
		metricsServer = m.Server(cfg.Metrics.Address)
		go func() {
			logger.InfoCtx(ctx, "Serving metrics", zap.String("address", cfg.Metrics.Address))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
			}
		}()
	}

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
	} else {
		logger.WarnCtx(ctx, "NATS not configured, revocation events will not be published")
	}

	// Initialize checker
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
		recorder,
		clock,
	)
	jobHandler := job.NewHandler(associationChecker, cfg.Job.Timeout)

	if *once {
		code := runOnce(ctx, jobHandler, metricsServer)
		if publisher != nil {
			publisher.Close()
		}
		logger.Flush(2 * time.Second)
		os.Exit(code)
	}

	// Schedule the check
	checkSweeper := sweeper.NewAssociationExpirySweeper(sweeper.AssociationExpiryConfig{
		Cron:       cfg.Schedule.Cron,
		RunOnStart: cfg.Schedule.RunOnStart,
	}, jobHandler)

	errChan := make(chan error, 1)
	go func() {
		if err := checkSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the running check
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := checkSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	shutdownMetrics(shutdownCtx, metricsServer)

	logger.Info("Checker stopped")
}

// runOnce runs a single check and returns the process exit code
func runOnce(ctx context.Context, jobHandler job.Handler, metricsServer *http.Server) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	resp, err := jobHandler.Handle(ctx, &job.Request{Source: "cli"})
	if err != nil {
		var failure *job.FailureResponse
		if errors.As(err, &failure) {
			logger.WarnCtx(ctx, failure.Body)
		} else {
			logger.ErrorCtx(ctx, err)
		}
		code = 1
	} else {
		logger.InfoCtx(ctx, resp.Body)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownMetrics(shutdownCtx, metricsServer)

	return code
}

func shutdownMetrics(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
	}
}
