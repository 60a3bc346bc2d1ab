package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/job"
	"github.com/feral-file/ff-author-checker/internal/logger"
	natsprovider "github.com/feral-file/ff-author-checker/internal/providers/jetstream"
	"github.com/feral-file/ff-author-checker/internal/providers/temporal"
	"github.com/feral-file/ff-author-checker/internal/workflows"
)

const DEFAULT_WORKFLOW_RUN_TIMEOUT = 30 * time.Minute

// Config holds the configuration for the event bridge
type Config struct {
	URL                string
	StreamName         string
	StreamSubjects     []string
	ConsumerName       string
	TriggerSubject     string
	MaxReconnects      int
	ReconnectWait      time.Duration
	ConnectionName     string
	AckWaitTimeout     time.Duration
	MaxDeliver         int
	TemporalTaskQueue  string
	WorkflowRunTimeout time.Duration
}

// Bridge defines the interface for the event bridge
type Bridge interface {
	// Run consumes check triggers until ctx is done
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc           adapter.NatsConn
	js           adapter.JetStream
	orchestrator temporal.TemporalOrchestrator
	json         adapter.JSON
	config       Config
}

// NewBridge creates a new event bridge
// The stream carrying the trigger subject is created when it does not exist yet
func NewBridge(
	ctx context.Context,
	cfg Config,
	natsJS adapter.NatsJetStream,
	orchestrator temporal.TemporalOrchestrator,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	if cfg.WorkflowRunTimeout <= 0 {
		cfg.WorkflowRunTimeout = DEFAULT_WORKFLOW_RUN_TIMEOUT
	}

	nc, js, err := natsJS.Connect(cfg.URL, natsprovider.ConnectionOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	subjects := cfg.StreamSubjects
	if len(subjects) == 0 {
		subjects = []string{cfg.TriggerSubject}
	}
	if err := js.EnsureStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: subjects,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return &bridge{
		nc:           nc,
		js:           js,
		orchestrator: orchestrator,
		json:         jsonAdapter,
		config:       cfg,
	}, nil
}

// Run starts the event bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting event bridge",
		zap.String("stream", b.config.StreamName),
		zap.String("consumer", b.config.ConsumerName),
		zap.String("subject", b.config.TriggerSubject),
	)

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: b.config.TriggerSubject,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming check triggers")

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Shutting down event bridge")
			return ctx.Err()
		case msg := <-msgChan:
			go b.handleMessage(ctx, msg)
		}
	}
}

// handleMessage starts a check workflow for a single trigger
// Undecodable payloads are terminated, failed starts are redelivered
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var req job.Request
	if data := msg.Data(); len(data) > 0 {
		if err := b.json.Unmarshal(data, &req); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal check trigger"), zap.String("subject", msg.Subject()))
			if err := msg.Term(); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
			}
			return
		}
	}

	// A redelivered trigger maps to the workflow ID of its first delivery
	key := ulid.Make().String()
	var deliveries uint64 = 1
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		key = strconv.FormatUint(metadata.Sequence.Stream, 10)
		deliveries = metadata.NumDelivered
	}

	logger.InfoCtx(ctx, "Received check trigger",
		zap.String("source", req.Source),
		zap.String("key", key),
		zap.Uint64("deliveryCount", deliveries),
	)

	if err := b.startCheck(ctx, workflows.CheckWorkflowID(key)); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to start check workflow"))
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}
}

func (b *bridge) startCheck(ctx context.Context, workflowID string) error {
	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{})

	opt := client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             b.config.TemporalTaskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		WorkflowRunTimeout:    b.config.WorkflowRunTimeout,
	}
	run, err := b.orchestrator.ExecuteWorkflow(ctx, opt, w.CheckAuthorAssociations)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			logger.InfoCtx(ctx, "Check workflow already started", zap.String("workflowID", workflowID))
			return nil
		}
		return fmt.Errorf("failed to execute workflow: %w", err)
	}

	logger.InfoCtx(ctx, "Check workflow started",
		zap.String("workflowID", run.GetID()),
		zap.String("runID", run.GetRunID()),
	)

	return nil
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
