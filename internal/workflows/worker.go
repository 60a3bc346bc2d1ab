package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/ff-author-checker/internal/domain"
)

const (
	CHECK_AUTHOR_ASSOCIATIONS_WORKFLOW = "CheckAuthorAssociations"

	DEFAULT_LIST_TIMEOUT = 5 * time.Minute
	DEFAULT_UNIT_TIMEOUT = time.Minute
)

// WorkerCore defines the interface for the author association workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// CheckAuthorAssociations lists the author associations and checks each of them in parallel
	// An error is returned only when the associations cannot be listed
	CheckAuthorAssociations(ctx workflow.Context) (*domain.JobResult, error)
}

type WorkerCoreConfig struct {
	// ListTimeout bounds the association listing activity
	ListTimeout time.Duration
	// UnitTimeout bounds a single association check activity
	UnitTimeout time.Duration
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config   WorkerCoreConfig
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig) WorkerCore {
	if config.ListTimeout <= 0 {
		config.ListTimeout = DEFAULT_LIST_TIMEOUT
	}
	if config.UnitTimeout <= 0 {
		config.UnitTimeout = DEFAULT_UNIT_TIMEOUT
	}

	return &workerCore{
		executor: executor,
		config:   config,
	}
}

// CheckWorkflowID returns the workflow ID of a check run triggered with the given key
func CheckWorkflowID(key string) string {
	return "author-associations-check-" + key
}
