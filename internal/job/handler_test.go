package job_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/job"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func TestHandler_Handle_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChecker := mocks.NewMockChecker(ctrl)
	mockChecker.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (*domain.JobResult, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			return &domain.JobResult{Total: 3, Succeeded: 2, Failed: 1, Revoked: 1}, nil
		})

	h := job.NewHandler(mockChecker, time.Minute)
	resp, err := h.Handle(context.Background(), &job.Request{Source: "test"})

	require.NoError(t, err)
	assert.Equal(t, "Success! checked 3 author associations: 2 succeeded, 1 failed, 1 revoked", resp.Body)
}

func TestHandler_Handle_IgnoresPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChecker := mocks.NewMockChecker(ctrl)
	mockChecker.EXPECT().Run(gomock.Any()).Return(&domain.JobResult{}, nil).Times(2)

	h := job.NewHandler(mockChecker, 0)

	resp, err := h.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Body, "Success!")

	resp, err = h.Handle(context.Background(), &job.Request{Payload: map[string]any{"anything": 1}})
	require.NoError(t, err)
	assert.Contains(t, resp.Body, "Success!")
}

func TestHandler_Handle_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listErr := &domain.FetchError{Resource: "all associations", Err: errors.New("connection refused")}
	mockChecker := mocks.NewMockChecker(ctrl)
	mockChecker.EXPECT().Run(gomock.Any()).Return(nil, listErr)

	h := job.NewHandler(mockChecker, time.Minute)
	resp, err := h.Handle(context.Background(), &job.Request{})

	assert.Nil(t, resp)
	var failure *job.FailureResponse
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "Failure! failed to get all associations: connection refused", failure.Body)
	assert.Equal(t, failure.Body, err.Error())
}
