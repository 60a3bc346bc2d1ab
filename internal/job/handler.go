package job

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

const DEFAULT_TIMEOUT = 5 * time.Minute

// Request is the trigger payload
// Its content is not used by the check
type Request struct {
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Response is returned when the run completed
type Response struct {
	Body string `json:"body"`
}

// FailureResponse is returned when the run could not complete
type FailureResponse struct {
	Body string `json:"body"`
}

func (f *FailureResponse) Error() string {
	return f.Body
}

// Handler runs one author associations check per invocation
//
//go:generate mockgen -source=handler.go -destination=../mocks/job_handler.go -package=mocks -mock_names=Handler=MockJobHandler
type Handler interface {
	// Handle runs the check within the configured deadline
	// The returned error is a *FailureResponse when the associations could not be listed
	Handle(ctx context.Context, req *Request) (*Response, error)
}

type handler struct {
	checker checker.Checker
	timeout time.Duration
}

// NewHandler creates a new job handler
func NewHandler(c checker.Checker, timeout time.Duration) Handler {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &handler{checker: c, timeout: timeout}
}

func (h *handler) Handle(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	source := "unknown"
	if req != nil && req.Source != "" {
		source = req.Source
	}
	logger.InfoCtx(ctx, "Handling author associations job", zap.String("source", source))

	result, err := h.checker.Run(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("source", source))
		return nil, &FailureResponse{Body: fmt.Sprintf("Failure! %s", err.Error())}
	}

	return &Response{
		Body: fmt.Sprintf("Success! checked %d author associations: %d succeeded, %d failed, %d revoked",
			result.Total, result.Succeeded, result.Failed, result.Revoked),
	}, nil
}
