package workflows_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
	"github.com/feral-file/ff-author-checker/internal/workflows"
)

func TestExecutor_ListAuthorAssociations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockChecker := mocks.NewMockChecker(ctrl)
	mockActivity := mocks.NewMockActivity(ctrl)
	executor := workflows.NewExecutor(mockChecker, mockActivity)

	expected := []domain.Association{association("a1", "pk1")}
	mockChecker.EXPECT().ListAuthorAssociations(ctx).Return(expected, nil)

	associations, err := executor.ListAuthorAssociations(ctx)

	require.NoError(t, err)
	assert.Equal(t, expected, associations)
}

func TestExecutor_CheckAssociation(t *testing.T) {
	_ = logger.Initialize(logger.Config{Debug: false})

	tests := []struct {
		name    string
		outcome domain.CheckOutcome
	}{
		{
			name:    "revoked",
			outcome: domain.CheckOutcome{AssociationID: "a1", Status: domain.CheckStatusRevoked, Expired: true},
		},
		{
			name:    "failed outcome is not an activity error",
			outcome: domain.CheckOutcome{AssociationID: "a1", Status: domain.CheckStatusFailed, Error: "failed to get all nfts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockChecker := mocks.NewMockChecker(ctrl)
			mockActivity := mocks.NewMockActivity(ctrl)
			executor := workflows.NewExecutor(mockChecker, mockActivity)

			mockActivity.EXPECT().
				GetInfo(gomock.Any()).
				Return(activity.Info{WorkflowExecution: workflow.Execution{ID: "author-associations-check-1"}})
			mockChecker.EXPECT().
				CheckAssociation(gomock.Any(), association("a1", "pk1")).
				DoAndReturn(func(ctx context.Context, a domain.Association) domain.CheckOutcome {
					assert.Equal(t, "author-associations-check-1", checker.RunIDFromContext(ctx))
					return tt.outcome
				})

			outcome, err := executor.CheckAssociation(context.Background(), association("a1", "pk1"))

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}
