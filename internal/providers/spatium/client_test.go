package spatium_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
	"github.com/feral-file/ff-author-checker/internal/providers/spatium"
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

func TestClient_RemoveAuthorAssociation_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := spatium.NewClient(mockHTTPClient, "https://api.example.com/")
	ctx := context.Background()

	mockHTTPClient.EXPECT().
		PostNoRetry(ctx, "https://api.example.com/api/remove-author-association/a1", "", gomock.Nil()).
		Return(nil, nil).
		Times(1)

	err := client.RemoveAuthorAssociation(ctx, "a1")

	assert.NoError(t, err)
}

func TestClient_RemoveAuthorAssociation_EscapesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := spatium.NewClient(mockHTTPClient, "https://api.example.com")
	ctx := context.Background()

	mockHTTPClient.EXPECT().
		PostNoRetry(ctx, "https://api.example.com/api/remove-author-association/a%2F1", "", gomock.Nil()).
		Return(nil, nil).
		Times(1)

	assert.NoError(t, client.RemoveAuthorAssociation(ctx, "a/1"))
}

func TestClient_RemoveAuthorAssociation_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := spatium.NewClient(mockHTTPClient, "https://api.example.com")
	ctx := context.Background()

	mockHTTPClient.EXPECT().
		PostNoRetry(ctx, gomock.Any(), "", gomock.Nil()).
		Return(nil, &adapter.StatusError{StatusCode: http.StatusInternalServerError, Body: "boom"}).
		Times(1)

	err := client.RemoveAuthorAssociation(ctx, "a1")

	require.Error(t, err)
	var callErr *domain.CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, "a1", callErr.AssociationID)
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestClient_RemoveAuthorAssociation_EmptyID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No HTTP call is expected
	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := spatium.NewClient(mockHTTPClient, "https://api.example.com")

	err := client.RemoveAuthorAssociation(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrEmptyAssociationID)
}

func TestClient_RemoveAuthorAssociation_AttemptedOnce(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "accepted", status: http.StatusAccepted},
		{name: "rate limited", status: http.StatusTooManyRequests, expectError: true},
		{name: "server error", status: http.StatusBadGateway, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/remove-author-association/a1", r.URL.Path)
				assert.Equal(t, int64(0), r.ContentLength)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			httpClient := adapter.NewHTTPClient(adapter.HTTPClientConfig{
				Timeout:              5 * time.Second,
				RetryInitialInterval: 10 * time.Millisecond,
				RetryMaxInterval:     20 * time.Millisecond,
				RetryMaxElapsedTime:  time.Second,
			})
			client := spatium.NewClient(httpClient, server.URL)

			err := client.RemoveAuthorAssociation(context.Background(), "a1")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}
