package workflows_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
	"github.com/feral-file/ff-author-checker/internal/workflows"
)

// CheckWorkflowTestSuite is the test suite for the author associations check workflow
type CheckWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env        *testsuite.TestWorkflowEnvironment
	ctrl       *gomock.Controller
	executor   *mocks.MockCoreExecutor
	workerCore workflows.WorkerCore
}

// SetupTest is called before each test
func (s *CheckWorkflowTestSuite) SetupTest() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.ctrl = gomock.NewController(s.T())
	s.executor = mocks.NewMockCoreExecutor(s.ctrl)
	s.workerCore = workflows.NewWorkerCore(s.executor, workflows.WorkerCoreConfig{})
}

// TearDownTest is called after each test
func (s *CheckWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
	s.ctrl.Finish()
}

// TestCheckWorkflowTestSuite runs the test suite
func TestCheckWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(CheckWorkflowTestSuite))
}

func association(id, target string) domain.Association {
	return domain.Association{
		AssociationID:                  id,
		TransactorPublicKeyBase58Check: "BC1YLplatform",
		TargetUserPublicKeyBase58Check: target,
		AssociationType:                "Spatium Author",
		AssociationValue:               "true",
	}
}

func (s *CheckWorkflowTestSuite) TestCheckAuthorAssociations_Success() {
	a1 := association("a1", "pk1")
	a2 := association("a2", "pk2")

	s.env.OnActivity(s.executor.ListAuthorAssociations, mock.Anything).
		Return([]domain.Association{a1, a2}, nil)
	s.env.OnActivity(s.executor.CheckAssociation, mock.Anything, a1).
		Return(domain.CheckOutcome{AssociationID: "a1", TargetPublicKey: "pk1", Status: domain.CheckStatusRevoked, Expired: true}, nil).
		Once()
	s.env.OnActivity(s.executor.CheckAssociation, mock.Anything, a2).
		Return(domain.CheckOutcome{AssociationID: "a2", TargetPublicKey: "pk2", Status: domain.CheckStatusActive}, nil).
		Once()

	s.env.ExecuteWorkflow(s.workerCore.CheckAuthorAssociations)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result domain.JobResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(2, result.Total)
	s.Equal(2, result.Succeeded)
	s.Equal(0, result.Failed)
	s.Equal(1, result.Revoked)
	s.NotEmpty(result.RunID)
	s.Require().Len(result.Outcomes, 2)
	s.Equal("a1", result.Outcomes[0].AssociationID)
	s.Equal("a2", result.Outcomes[1].AssociationID)
}

func (s *CheckWorkflowTestSuite) TestCheckAuthorAssociations_OneCheckFails() {
	a1 := association("a1", "pk1")
	a2 := association("a2", "pk2")
	a3 := association("a3", "pk3")

	s.env.OnActivity(s.executor.ListAuthorAssociations, mock.Anything).
		Return([]domain.Association{a1, a2, a3}, nil)
	s.env.OnActivity(s.executor.CheckAssociation, mock.Anything, a1).
		Return(domain.CheckOutcome{AssociationID: "a1", Status: domain.CheckStatusActive}, nil)
	s.env.OnActivity(s.executor.CheckAssociation, mock.Anything, a2).
		Return(domain.CheckOutcome{}, errors.New("activity timed out"))
	s.env.OnActivity(s.executor.CheckAssociation, mock.Anything, a3).
		Return(domain.CheckOutcome{AssociationID: "a3", Status: domain.CheckStatusFailed, Error: "failed to get all nfts"}, nil)

	s.env.ExecuteWorkflow(s.workerCore.CheckAuthorAssociations)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result domain.JobResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(3, result.Total)
	s.Equal(1, result.Succeeded)
	s.Equal(2, result.Failed)
	s.Require().Len(result.Outcomes, 3)
	s.Equal("a2", result.Outcomes[1].AssociationID)
	s.Equal("pk2", result.Outcomes[1].TargetPublicKey)
	s.Equal(domain.CheckStatusFailed, result.Outcomes[1].Status)
	s.Contains(result.Outcomes[1].Error, "activity timed out")
}

func (s *CheckWorkflowTestSuite) TestCheckAuthorAssociations_ListFails() {
	s.env.OnActivity(s.executor.ListAuthorAssociations, mock.Anything).
		Return(nil, errors.New("failed to get all associations: unexpected status code"))

	s.env.ExecuteWorkflow(s.workerCore.CheckAuthorAssociations)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Contains(s.env.GetWorkflowError().Error(), "failed to get all associations")
}

func (s *CheckWorkflowTestSuite) TestCheckAuthorAssociations_NoAssociations() {
	s.env.OnActivity(s.executor.ListAuthorAssociations, mock.Anything).
		Return([]domain.Association{}, nil)

	s.env.ExecuteWorkflow(s.workerCore.CheckAuthorAssociations)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result domain.JobResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Zero(result.Total)
}
