package checker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/checker"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/expiry"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/mocks"
)

const (
	platformKey = "BC1YLplatform"
	authorType  = "Spatium Author"
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

func testConfig() checker.Config {
	return checker.Config{
		PlatformPublicKey: platformKey,
		AssociationType:   authorType,
		Concurrency:       4,
		UnitTimeout:       5 * time.Second,
	}
}

func association(id, target string) domain.Association {
	return domain.Association{
		AssociationID:                  id,
		TransactorPublicKeyBase58Check: platformKey,
		TargetUserPublicKeyBase58Check: target,
		AssociationType:                authorType,
		AssociationValue:               "true",
	}
}

func grant(expiration string) domain.NFTsMap {
	return domain.NFTsMap{
		"post-" + expiration: {
			NFTEntryResponses: []domain.NFTEntry{{OwnerPublicKeyBase58Check: "owner", SerialNumber: 1}},
			PostEntryResponse: domain.PostEntry{
				PostHashHex:                "post-" + expiration,
				PosterPublicKeyBase58Check: platformKey,
				PostExtraData: map[string]string{
					domain.EXTRA_DATA_EXPIRATION_DATE: expiration,
					domain.EXTRA_DATA_NFT_TYPE:        authorType,
				},
			},
		},
	}
}

type fixture struct {
	deso      *mocks.MockDesoClient
	spatium   *mocks.MockSpatiumClient
	publisher *mocks.MockPublisher
	recorder  *mocks.MockRecorder
	evaluator *mocks.MockEvaluator
}

func newFixture(ctrl *gomock.Controller) *fixture {
	return &fixture{
		deso:      mocks.NewMockDesoClient(ctrl),
		spatium:   mocks.NewMockSpatiumClient(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		recorder:  mocks.NewMockRecorder(ctrl),
		evaluator: mocks.NewMockEvaluator(ctrl),
	}
}

func TestChecker_Run_RevokesOnlyExpiredGrants(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	clock := adapter.NewClock()
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, expiry.NewEvaluator(clock, authorType), f.publisher, nil, clock)

	f.deso.EXPECT().
		ListAuthorAssociations(gomock.Any(), platformKey, authorType).
		Return([]domain.Association{association("a1", "pk1"), association("a2", "pk2")}, nil)
	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(grant("1000000000"), nil)
	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk2").Return(grant("4102444800"), nil)
	f.spatium.EXPECT().RemoveAuthorAssociation(gomock.Any(), "a1").Return(nil).Times(1)

	var published *domain.RevocationEvent
	f.publisher.EXPECT().
		PublishRevocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.RevocationEvent) error {
			published = event
			return nil
		}).
		Times(1)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Revoked)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "a1", result.Outcomes[0].AssociationID)
	assert.Equal(t, domain.CheckStatusRevoked, result.Outcomes[0].Status)
	assert.True(t, result.Outcomes[0].Expired)
	assert.Equal(t, "a2", result.Outcomes[1].AssociationID)
	assert.Equal(t, domain.CheckStatusActive, result.Outcomes[1].Status)
	assert.False(t, result.Outcomes[1].Expired)

	require.NotNil(t, published)
	assert.NotEmpty(t, published.EventID)
	assert.Equal(t, result.RunID, published.RunID)
	assert.Equal(t, "a1", published.AssociationID)
	assert.Equal(t, "pk1", published.TargetPublicKey)
	assert.Equal(t, authorType, published.AssociationType)
	assert.False(t, published.RevokedAt.IsZero())
}

func TestChecker_Run_OneFailureDoesNotFailTheRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, nil, nil, adapter.NewClock())

	f.deso.EXPECT().
		ListAuthorAssociations(gomock.Any(), platformKey, authorType).
		Return([]domain.Association{
			association("a1", "pk1"),
			association("a2", "pk2"),
			association("a3", "pk3"),
		}, nil)
	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(domain.NFTsMap{}, nil)
	f.deso.EXPECT().
		GetNFTsForUser(gomock.Any(), "pk2").
		Return(nil, &domain.FetchError{Resource: "all nfts", Err: errors.New("connection reset")})
	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk3").Return(domain.NFTsMap{}, nil)
	f.evaluator.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), platformKey).
		Return(expiry.Evaluation{MatchedPosts: 1}).
		Times(2)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Revoked)

	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "a2", failures[0].AssociationID)
	assert.Contains(t, failures[0].Error, "failed to get all nfts")
}

func TestChecker_Run_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

	listErr := &domain.FetchError{Resource: "all associations", Err: domain.ErrUnexpectedStatus}
	f.deso.EXPECT().ListAuthorAssociations(gomock.Any(), platformKey, authorType).Return(nil, listErr)
	f.recorder.EXPECT().ObserveRun(gomock.Any(), listErr)

	result, err := c.Run(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestChecker_Run_NoAssociations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

	f.deso.EXPECT().ListAuthorAssociations(gomock.Any(), platformKey, authorType).Return(nil, nil)
	f.recorder.EXPECT().ObserveRun(gomock.Any(), nil)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Total)
	assert.Empty(t, result.Outcomes)
}

func TestChecker_Run_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, nil, nil, adapter.NewClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.deso.EXPECT().
		ListAuthorAssociations(gomock.Any(), platformKey, authorType).
		Return([]domain.Association{association("a1", "pk1"), association("a2", "pk2")}, nil)
	f.deso.EXPECT().
		GetNFTsForUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, publicKey string) (domain.NFTsMap, error) {
			return nil, ctx.Err()
		}).
		AnyTimes()

	result, err := c.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Revoked)
}

func TestChecker_Run_DeadlineKeepsRunningOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	cfg := testConfig()
	cfg.Concurrency = 1
	clock := adapter.NewClock()
	c := checker.NewChecker(cfg, f.deso, f.spatium, expiry.NewEvaluator(clock, authorType), nil, f.recorder, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f.deso.EXPECT().
		ListAuthorAssociations(gomock.Any(), platformKey, authorType).
		Return([]domain.Association{association("a1", "pk1"), association("a2", "pk2")}, nil)
	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(grant("1000000000"), nil)
	// The revocation lands after the job deadline
	f.spatium.EXPECT().
		RemoveAuthorAssociation(gomock.Any(), "a1").
		DoAndReturn(func(ctx context.Context, associationID string) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}).
		Times(1)

	// One outcome per association
	f.recorder.EXPECT().ObserveOutcome(domain.CheckStatusRevoked).Times(1)
	f.recorder.EXPECT().ObserveOutcome(domain.CheckStatusFailed).Times(1)
	f.recorder.EXPECT().ObserveRun(gomock.Any(), nil).Times(1)

	result, err := c.Run(ctx)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, domain.CheckStatusRevoked, result.Outcomes[0].Status)
	assert.True(t, result.Outcomes[0].Expired)
	assert.Equal(t, domain.CheckStatusFailed, result.Outcomes[1].Status)
	assert.Contains(t, result.Outcomes[1].Error, "did not start")
	assert.Equal(t, 1, result.Revoked)
	assert.Equal(t, 1, result.Failed)
}

func TestChecker_Run_BoundsConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	cfg := testConfig()
	cfg.Concurrency = 2
	c := checker.NewChecker(cfg, f.deso, f.spatium, f.evaluator, nil, nil, adapter.NewClock())

	associations := make([]domain.Association, 10)
	for i := range associations {
		associations[i] = association(string(rune('a'+i)), "pk")
	}

	var inFlight, maxInFlight int32
	var mu sync.Mutex
	f.deso.EXPECT().ListAuthorAssociations(gomock.Any(), platformKey, authorType).Return(associations, nil)
	f.deso.EXPECT().
		GetNFTsForUser(gomock.Any(), "pk").
		DoAndReturn(func(ctx context.Context, publicKey string) (domain.NFTsMap, error) {
			current := atomic.AddInt32(&inFlight, 1)
			mu.Lock()
			if current > maxInFlight {
				maxInFlight = current
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return domain.NFTsMap{}, nil
		}).
		Times(10)
	f.evaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), platformKey).Return(expiry.Evaluation{}).Times(10)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, result.Succeeded)
	assert.LessOrEqual(t, maxInFlight, int32(2))
}

func TestChecker_CheckAssociation_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		evaluation expiry.Evaluation
		expected   domain.CheckStatus
	}{
		{
			name:       "no post from the platform",
			evaluation: expiry.Evaluation{},
			expected:   domain.CheckStatusNoGrant,
		},
		{
			name:       "platform posts without a marker",
			evaluation: expiry.Evaluation{MatchedPosts: 2},
			expected:   domain.CheckStatusActive,
		},
		{
			name:       "grant not expired yet",
			evaluation: expiry.Evaluation{MatchedPosts: 1, MarkedPosts: 1},
			expected:   domain.CheckStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(ctrl)
			c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

			nfts := domain.NFTsMap{}
			f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(nfts, nil)
			f.evaluator.EXPECT().Evaluate(gomock.Any(), nfts, platformKey).Return(tt.evaluation)
			f.recorder.EXPECT().ObserveOutcome(tt.expected)

			outcome := c.CheckAssociation(context.Background(), association("a1", "pk1"))

			assert.Equal(t, tt.expected, outcome.Status)
			assert.False(t, outcome.Expired)
			assert.Empty(t, outcome.Error)
		})
	}
}

func TestChecker_CheckAssociation_EmptyTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

	f.recorder.EXPECT().ObserveOutcome(domain.CheckStatusFailed)

	outcome := c.CheckAssociation(context.Background(), association("a1", ""))

	assert.Equal(t, domain.CheckStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "no target user")
}

func TestChecker_CheckAssociation_RevokeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(domain.NFTsMap{}, nil)
	f.evaluator.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), platformKey).
		Return(expiry.Evaluation{MatchedPosts: 1, MarkedPosts: 1, Revocable: true, ExpiredPostHash: "p1"})
	f.spatium.EXPECT().
		RemoveAuthorAssociation(gomock.Any(), "a1").
		Return(&domain.CallError{AssociationID: "a1", Err: domain.ErrUnexpectedStatus})
	f.recorder.EXPECT().ObserveOutcome(domain.CheckStatusFailed)

	outcome := c.CheckAssociation(context.Background(), association("a1", "pk1"))

	assert.Equal(t, domain.CheckStatusFailed, outcome.Status)
	assert.True(t, outcome.Expired)
	assert.Contains(t, outcome.Error, "failed to remove author association a1")
}

func TestChecker_CheckAssociation_PublishFailureKeepsRevocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, f.recorder, adapter.NewClock())

	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(domain.NFTsMap{}, nil)
	f.evaluator.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), platformKey).
		Return(expiry.Evaluation{MatchedPosts: 1, MarkedPosts: 1, Revocable: true})
	f.spatium.EXPECT().RemoveAuthorAssociation(gomock.Any(), "a1").Return(nil)
	f.publisher.EXPECT().PublishRevocation(gomock.Any(), gomock.Any()).Return(errors.New("no responders"))
	f.recorder.EXPECT().ObservePublishFailure()
	f.recorder.EXPECT().ObserveOutcome(domain.CheckStatusRevoked)

	outcome := c.CheckAssociation(context.Background(), association("a1", "pk1"))

	assert.Equal(t, domain.CheckStatusRevoked, outcome.Status)
	assert.True(t, outcome.Expired)
	assert.Empty(t, outcome.Error)
}

func TestChecker_CheckAssociation_EventCarriesRunID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	revokedAt := time.Unix(1_700_000_000, 0).UTC()
	mockClock := mocks.NewMockClock(ctrl)
	mockClock.EXPECT().Now().Return(revokedAt).AnyTimes()
	c := checker.NewChecker(testConfig(), f.deso, f.spatium, f.evaluator, f.publisher, nil, mockClock)

	f.deso.EXPECT().GetNFTsForUser(gomock.Any(), "pk1").Return(domain.NFTsMap{}, nil)
	f.evaluator.EXPECT().
		Evaluate(gomock.Any(), gomock.Any(), platformKey).
		Return(expiry.Evaluation{MatchedPosts: 1, MarkedPosts: 1, Revocable: true})
	f.spatium.EXPECT().RemoveAuthorAssociation(gomock.Any(), "a1").Return(nil)
	f.publisher.EXPECT().
		PublishRevocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.RevocationEvent) error {
			assert.Equal(t, "workflow-1", event.RunID)
			assert.Equal(t, revokedAt, event.RevokedAt)
			return nil
		})

	ctx := checker.WithRunID(context.Background(), "workflow-1")
	outcome := c.CheckAssociation(ctx, association("a1", "pk1"))

	assert.Equal(t, domain.CheckStatusRevoked, outcome.Status)
}

func TestRunIDFromContext(t *testing.T) {
	assert.Empty(t, checker.RunIDFromContext(context.Background()))
	assert.Equal(t, "r1", checker.RunIDFromContext(checker.WithRunID(context.Background(), "r1")))
}
