package temporal

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// TemporalOrchestrator starts and inspects workflow executions
// client.Client satisfies it
//
//go:generate mockgen -source=orchestrator.go -destination=../../mocks/temporal_orchestrator.go -package=mocks -mock_names=TemporalOrchestrator=MockTemporalOrchestrator,Scheduler=MockScheduler
type TemporalOrchestrator interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
}

// Scheduler creates Temporal schedules
// client.ScheduleClient satisfies it
type Scheduler interface {
	Create(ctx context.Context, options client.ScheduleOptions) (client.ScheduleHandle, error)
}

// ScheduleConfig describes a recurring workflow execution
type ScheduleConfig struct {
	// ID is the schedule ID, also used as the prefix of the started workflow IDs
	ID string
	// Cron is a cron expression or a descriptor such as "@daily"
	Cron string
	// TaskQueue is the task queue of the scheduled workflow
	TaskQueue string
}

// EnsureSchedule creates the schedule for workflow unless one with the same ID already exists
// Overlapping runs are skipped
func EnsureSchedule(ctx context.Context, scheduler Scheduler, cfg ScheduleConfig, workflow interface{}, args ...interface{}) error {
	if cfg.ID == "" || cfg.Cron == "" || cfg.TaskQueue == "" {
		return errors.New("schedule id, cron and task queue are required")
	}

	_, err := scheduler.Create(ctx, client.ScheduleOptions{
		ID: cfg.ID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{cfg.Cron},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        cfg.ID,
			Workflow:  workflow,
			Args:      args,
			TaskQueue: cfg.TaskQueue,
		},
		Overlap: enums.SCHEDULE_OVERLAP_POLICY_SKIP,
	})
	if err != nil {
		if errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
			return nil
		}
		return fmt.Errorf("failed to create schedule %s: %w", cfg.ID, err)
	}

	return nil
}
