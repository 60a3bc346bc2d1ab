package workflows

import (
	"context"

	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_core.go -package=mocks -mock_names=Executor=MockCoreExecutor
type Executor interface {
	// ListAuthorAssociations lists the author associations created by the platform
	ListAuthorAssociations(ctx context.Context) ([]domain.Association, error)

	// CheckAssociation checks a single association and revokes it when the grant has expired
	// Check failures are carried by the outcome so the activity itself never fails for them
	CheckAssociation(ctx context.Context, association domain.Association) (domain.CheckOutcome, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	checker          checker.Checker
	temporalActivity adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(c checker.Checker, temporalActivity adapter.Activity) Executor {
	return &executor{
		checker:          c,
		temporalActivity: temporalActivity,
	}
}

func (e *executor) ListAuthorAssociations(ctx context.Context) ([]domain.Association, error) {
	return e.checker.ListAuthorAssociations(ctx)
}

func (e *executor) CheckAssociation(ctx context.Context, association domain.Association) (domain.CheckOutcome, error) {
	// The workflow ID is the run ID of revocation events
	runID := e.temporalActivity.GetInfo(ctx).WorkflowExecution.ID
	ctx = checker.WithRunID(ctx, runID)

	outcome := e.checker.CheckAssociation(ctx, association)
	if outcome.Failed() {
		logger.WarnCtx(ctx, "Association check failed",
			zap.String("runID", runID),
			zap.String("associationID", association.AssociationID),
			zap.String("error", outcome.Error),
		)
	}

	return outcome, nil
}
