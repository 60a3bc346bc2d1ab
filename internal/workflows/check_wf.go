package workflows

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

// CheckAuthorAssociations lists the author associations and checks each of them in parallel
func (w *workerCore) CheckAuthorAssociations(ctx workflow.Context) (*domain.JobResult, error) {
	runID := workflow.GetInfo(ctx).WorkflowExecution.ID
	startedAt := workflow.Now(ctx)

	logger.InfoWf(ctx, "Starting author associations check", zap.String("runID", runID))

	// Revocation is not idempotent so no activity is ever retried
	listCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.ListTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	// Step 1: List the author associations
	var associations []domain.Association
	err := workflow.ExecuteActivity(listCtx, w.executor.ListAuthorAssociations).Get(ctx, &associations)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to list author associations"),
			zap.Error(err),
		)
		return nil, err
	}

	logger.InfoWf(ctx, "Found author associations", zap.Int("count", len(associations)))

	// Step 2: Check every association in parallel
	checkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.UnitTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	futures := make([]workflow.Future, len(associations))
	for i, association := range associations {
		futures[i] = workflow.ExecuteActivity(checkCtx, w.executor.CheckAssociation, association)
	}

	// Step 3: Wait for all checks to complete
	outcomes := make([]domain.CheckOutcome, len(associations))
	for i, future := range futures {
		var outcome domain.CheckOutcome
		if err := future.Get(ctx, &outcome); err != nil {
			logger.WarnWf(ctx, "Association check activity failed",
				zap.String("associationID", associations[i].AssociationID),
				zap.Error(err),
			)
			// Continue with the other checks even if one fails
			outcome = domain.CheckOutcome{
				AssociationID:   associations[i].AssociationID,
				TargetPublicKey: associations[i].TargetUserPublicKeyBase58Check,
				Status:          domain.CheckStatusFailed,
				Error:           err.Error(),
			}
		}
		outcomes[i] = outcome
	}

	result := domain.NewJobResult(runID, startedAt, workflow.Now(ctx), outcomes)

	logger.InfoWf(ctx, "Author associations check completed",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("revoked", result.Revoked),
	)

	return result, nil
}
