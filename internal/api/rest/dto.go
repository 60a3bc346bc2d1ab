package rest

import (
	"time"

	"github.com/feral-file/ff-author-checker/internal/domain"
)

// RunCheckResponse is the body of a synchronous check run
type RunCheckResponse struct {
	Body string `json:"body"`
}

// StartCheckResponse identifies the started check workflow
type StartCheckResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// CheckStatusResponse represents the status of a check workflow execution
type CheckStatusResponse struct {
	WorkflowID    string            `json:"workflow_id"`
	RunID         string            `json:"run_id"`
	Status        string            `json:"status"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	CloseTime     *time.Time        `json:"close_time,omitempty"`
	ExecutionTime *uint64           `json:"execution_time_ms,omitempty"`
	Result        *domain.JobResult `json:"result,omitempty"`
}
