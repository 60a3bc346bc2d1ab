package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
	"github.com/feral-file/ff-author-checker/internal/providers/jetstream"
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

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:               "nats://localhost:4222",
		StreamName:        "AUTHOR_ASSOCIATIONS",
		StreamSubjects:    []string{domain.SUBJECT_CHECK_TRIGGER, domain.SUBJECT_ASSOCIATION_REVOKED},
		RevocationSubject: domain.SUBJECT_ASSOCIATION_REVOKED,
		MaxReconnects:     3,
		ReconnectWait:     time.Second,
		ConnectionName:    "test",
	}
}

func TestPublisher_PublishRevocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
	mockConn := mocks.NewMockNatsConn(ctrl)
	mockJS := mocks.NewMockJetStream(ctrl)

	mockNatsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(mockConn, mockJS, nil)
	mockJS.EXPECT().
		EnsureStream(ctx, natsjs.StreamConfig{
			Name:     "AUTHOR_ASSOCIATIONS",
			Subjects: []string{domain.SUBJECT_CHECK_TRIGGER, domain.SUBJECT_ASSOCIATION_REVOKED},
		}).
		Return(nil)

	publisher, err := jetstream.NewPublisher(ctx, testConfig(), mockNatsJS, adapter.NewJSON())
	require.NoError(t, err)

	event := &domain.RevocationEvent{
		EventID:         "01HX",
		RunID:           "run-1",
		AssociationID:   "a1",
		TargetPublicKey: "pk1",
		AssociationType: "Spatium Author",
		RevokedAt:       time.Unix(1_700_000_000, 0).UTC(),
	}

	mockJS.EXPECT().
		Publish(ctx, domain.SUBJECT_ASSOCIATION_REVOKED, gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, subject string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var published domain.RevocationEvent
			require.NoError(t, json.Unmarshal(data, &published))
			assert.Equal(t, event.EventID, published.EventID)
			assert.Equal(t, event.RunID, published.RunID)
			assert.Equal(t, event.AssociationID, published.AssociationID)
			assert.Equal(t, event.TargetPublicKey, published.TargetPublicKey)
			assert.True(t, event.RevokedAt.Equal(published.RevokedAt))
			assert.Len(t, opts, 1)
			return &natsjs.PubAck{Stream: "AUTHOR_ASSOCIATIONS", Sequence: 1}, nil
		})

	assert.NoError(t, publisher.PublishRevocation(ctx, event))

	mockConn.EXPECT().Close()
	publisher.Close()
}

func TestPublisher_PublishRevocation_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
	mockConn := mocks.NewMockNatsConn(ctrl)
	mockJS := mocks.NewMockJetStream(ctrl)

	mockNatsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(mockConn, mockJS, nil)
	mockJS.EXPECT().EnsureStream(ctx, gomock.Any()).Return(nil)
	mockJS.EXPECT().
		Publish(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("no responders"))

	publisher, err := jetstream.NewPublisher(ctx, testConfig(), mockNatsJS, adapter.NewJSON())
	require.NoError(t, err)

	err = publisher.PublishRevocation(ctx, &domain.RevocationEvent{EventID: "e1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
	assert.Contains(t, err.Error(), "no responders")
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
	mockNatsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("connection refused"))

	publisher, err := jetstream.NewPublisher(context.Background(), testConfig(), mockNatsJS, adapter.NewJSON())

	assert.Nil(t, publisher)
	assert.ErrorContains(t, err, "failed to connect to NATS")
}

func TestNewPublisher_StreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockNatsJS := mocks.NewMockNatsJetStream(ctrl)
	mockConn := mocks.NewMockNatsConn(ctrl)
	mockJS := mocks.NewMockJetStream(ctrl)

	mockNatsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(mockConn, mockJS, nil)
	mockJS.EXPECT().EnsureStream(ctx, gomock.Any()).Return(errors.New("insufficient resources"))
	// The connection is released when the stream cannot be ensured
	mockConn.EXPECT().Close()

	publisher, err := jetstream.NewPublisher(ctx, testConfig(), mockNatsJS, adapter.NewJSON())

	assert.Nil(t, publisher)
	assert.ErrorContains(t, err, "failed to ensure stream AUTHOR_ASSOCIATIONS")
}
