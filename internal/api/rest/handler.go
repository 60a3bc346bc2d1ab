package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/job"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/providers/temporal"
	"github.com/feral-file/ff-author-checker/internal/workflows"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// RunCheck runs a check in process and responds with the job body
	// POST /api/v1/checks/run
	RunCheck(c *gin.Context)

	// StartCheck starts a check workflow
	// POST /api/v1/checks
	StartCheck(c *gin.Context)

	// GetCheckStatus retrieves the status of a check workflow execution
	// GET /api/v1/checks/:workflow_id/runs/:run_id
	GetCheckStatus(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// HandlerConfig holds the handler configuration
type HandlerConfig struct {
	TaskQueue          string
	WorkflowRunTimeout time.Duration
}

// handler implements the Handler interface
type handler struct {
	config       HandlerConfig
	job          job.Handler
	orchestrator temporal.TemporalOrchestrator
}

// NewHandler creates a new REST API handler
// orchestrator may be nil, the workflow endpoints then answer 503
func NewHandler(cfg HandlerConfig, jobHandler job.Handler, orchestrator temporal.TemporalOrchestrator) Handler {
	if cfg.WorkflowRunTimeout <= 0 {
		cfg.WorkflowRunTimeout = 30 * time.Minute
	}
	return &handler{
		config:       cfg,
		job:          jobHandler,
		orchestrator: orchestrator,
	}
}

func (h *handler) RunCheck(c *gin.Context) {
	var req job.Request
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}
	if req.Source == "" {
		req.Source = "api"
	}

	resp, err := h.job.Handle(c.Request.Context(), &req)
	if err != nil {
		var failure *job.FailureResponse
		if errors.As(err, &failure) {
			c.JSON(http.StatusBadGateway, RunCheckResponse{Body: failure.Body})
			return
		}
		respondServiceError(c, err, "Failed to run check")
		return
	}

	c.JSON(http.StatusOK, RunCheckResponse{Body: resp.Body})
}

func (h *handler) StartCheck(c *gin.Context) {
	if h.orchestrator == nil {
		respondServiceUnavailable(c, "Workflow orchestration is not configured")
		return
	}

	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{})
	options := client.StartWorkflowOptions{
		ID:                    workflows.CheckWorkflowID(ulid.Make().String()),
		TaskQueue:             h.config.TaskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		WorkflowRunTimeout:    h.config.WorkflowRunTimeout,
	}

	run, err := h.orchestrator.ExecuteWorkflow(c.Request.Context(), options, w.CheckAuthorAssociations)
	if err != nil {
		respondServiceError(c, err, "Failed to start check", zap.String("workflowID", options.ID))
		return
	}

	logger.InfoCtx(c.Request.Context(), "Check workflow started",
		zap.String("workflowID", run.GetID()),
		zap.String("runID", run.GetRunID()),
	)

	c.JSON(http.StatusAccepted, StartCheckResponse{
		WorkflowID: run.GetID(),
		RunID:      run.GetRunID(),
	})
}

func (h *handler) GetCheckStatus(c *gin.Context) {
	if h.orchestrator == nil {
		respondServiceUnavailable(c, "Workflow orchestration is not configured")
		return
	}

	workflowID := c.Param("workflow_id")
	runID := c.Param("run_id")
	if workflowID == "" || runID == "" {
		respondBadRequest(c, "workflow_id and run_id are required")
		return
	}

	ctx := c.Request.Context()
	desc, err := h.orchestrator.DescribeWorkflowExecution(ctx, workflowID, runID)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, "Check not found")
			return
		}
		respondServiceError(c, err, "Failed to get check status", zap.String("workflowID", workflowID))
		return
	}

	info := desc.GetWorkflowExecutionInfo()
	status := info.GetStatus()
	response := CheckStatusResponse{
		WorkflowID: workflowID,
		RunID:      runID,
		Status:     status.String(),
	}

	if info.GetStartTime() != nil {
		startTime := info.GetStartTime().AsTime()
		response.StartTime = &startTime
	}
	if info.GetCloseTime() != nil {
		closeTime := info.GetCloseTime().AsTime()
		response.CloseTime = &closeTime
		if response.StartTime != nil {
			// Clock skew between history events must not wrap around
			elapsed := max(closeTime.Sub(*response.StartTime), 0)
			ms := uint64(elapsed.Milliseconds())
			response.ExecutionTime = &ms
		}
	}

	if status == enums.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		var result domain.JobResult
		if err := h.orchestrator.GetWorkflow(ctx, workflowID, runID).Get(ctx, &result); err != nil {
			respondServiceError(c, err, "Failed to get check result", zap.String("workflowID", workflowID))
			return
		}
		response.Result = &result
	}

	c.JSON(http.StatusOK, response)
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-author-checker-api",
	})
}
