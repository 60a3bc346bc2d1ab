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

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/config"
	"github.com/feral-file/ff-author-checker/internal/expiry"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/messaging"
	"github.com/feral-file/ff-author-checker/internal/metrics"
	"github.com/feral-file/ff-author-checker/internal/providers/deso"
	"github.com/feral-file/ff-author-checker/internal/providers/jetstream"
	"github.com/feral-file/ff-author-checker/internal/providers/spatium"
	temporal "github.com/feral-file/ff-author-checker/internal/providers/temporal"
	"github.com/feral-file/ff-author-checker/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerConfig(*configFile, *envPath)
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
			"service": "worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Worker")

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
		m := metrics.New("author_checker", "worker", nil)
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
	}

	// Initialize checker and executor for activities
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
	executor := workflows.NewExecutor(associationChecker, adapter.NewActivity())

	// Connect to Temporal with logger integration
	temporalLogger := temporal.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Create Temporal worker
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.TaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors: []interceptor.WorkerInterceptor{
				temporal.NewSentryActivityInterceptor(),
			},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("taskQueue", cfg.Temporal.TaskQueue))

	// Create worker core instance
	workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfig{
		ListTimeout: cfg.Job.Timeout,
		UnitTimeout: cfg.Job.UnitTimeout,
	})

	// Register workflows
	temporalWorker.RegisterWorkflowWithOptions(workerCore.CheckAuthorAssociations, workflow.RegisterOptions{
		Name: workflows.CHECK_AUTHOR_ASSOCIATIONS_WORKFLOW,
	})
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.ListAuthorAssociations)
	temporalWorker.RegisterActivity(executor.CheckAssociation)
	logger.InfoCtx(ctx, "Registered activities")

	// Create the recurring schedule
	if cfg.Schedule.Enabled {
		err = temporal.EnsureSchedule(ctx, temporalClient.ScheduleClient(), temporal.ScheduleConfig{
			ID:        cfg.Schedule.ID,
			Cron:      cfg.Schedule.Cron,
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.CHECK_AUTHOR_ASSOCIATIONS_WORKFLOW)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to ensure schedule", zap.Error(err), zap.String("schedule_id", cfg.Schedule.ID))
		}
		logger.InfoCtx(ctx, "Schedule ensured", zap.String("schedule_id", cfg.Schedule.ID), zap.String("cron", cfg.Schedule.Cron))
	}

	// Start worker
	err = temporalWorker.Start()
	if err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))

	logger.InfoCtx(ctx, "Shutting down worker...")
	temporalWorker.Stop()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("component", "metrics"))
		}
	}
	logger.Info("Worker stopped")
}
