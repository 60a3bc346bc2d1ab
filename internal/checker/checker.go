package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/expiry"
	"github.com/feral-file/ff-author-checker/internal/logger"
	"github.com/feral-file/ff-author-checker/internal/messaging"
	"github.com/feral-file/ff-author-checker/internal/metrics"
	"github.com/feral-file/ff-author-checker/internal/providers/deso"
	"github.com/feral-file/ff-author-checker/internal/providers/spatium"
)

const (
	DEFAULT_CONCURRENCY  = 8
	DEFAULT_UNIT_TIMEOUT = time.Minute
)

// Config holds the checker configuration
type Config struct {
	// PlatformPublicKey creates the author associations and posts the author NFTs
	PlatformPublicKey string
	// AssociationType is the association type of author grants
	AssociationType string
	// Concurrency is the maximum number of associations checked at the same time
	Concurrency int
	// UnitTimeout bounds a single association check
	UnitTimeout time.Duration
}

// Checker defines the interface for checking author associations
//
//go:generate mockgen -source=checker.go -destination=../mocks/checker.go -package=mocks -mock_names=Checker=MockChecker
type Checker interface {
	// Run lists the author associations and checks each of them concurrently
	// An error is returned only when the associations cannot be listed
	Run(ctx context.Context) (*domain.JobResult, error)

	// ListAuthorAssociations lists the author associations created by the platform
	ListAuthorAssociations(ctx context.Context) ([]domain.Association, error)

	// CheckAssociation checks a single association and revokes it when the grant has expired
	// Failures are recorded in the outcome, never returned
	CheckAssociation(ctx context.Context, association domain.Association) domain.CheckOutcome
}

type checker struct {
	config    Config
	deso      deso.Client
	spatium   spatium.Client
	evaluator expiry.Evaluator
	publisher messaging.Publisher
	metrics   metrics.Recorder
	clock     adapter.Clock
}

// NewChecker creates a new checker
// publisher may be nil when revocation events are not published
func NewChecker(
	cfg Config,
	desoClient deso.Client,
	spatiumClient spatium.Client,
	evaluator expiry.Evaluator,
	publisher messaging.Publisher,
	recorder metrics.Recorder,
	clock adapter.Clock,
) Checker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DEFAULT_CONCURRENCY
	}
	if cfg.UnitTimeout <= 0 {
		cfg.UnitTimeout = DEFAULT_UNIT_TIMEOUT
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &checker{
		config:    cfg,
		deso:      desoClient,
		spatium:   spatiumClient,
		evaluator: evaluator,
		publisher: publisher,
		metrics:   recorder,
		clock:     clock,
	}
}

type runIDKey struct{}

// WithRunID attaches the run ID to the context
// Revocation events carry the run ID found in the check context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID attached to the context, if any
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}

func (c *checker) Run(ctx context.Context) (*domain.JobResult, error) {
	startedAt := c.clock.Now()
	runID := ulid.Make().String()
	ctx = WithRunID(ctx, runID)

	logger.InfoCtx(ctx, "Starting author associations check",
		zap.String("runID", runID),
		zap.String("transactor", c.config.PlatformPublicKey),
		zap.String("associationType", c.config.AssociationType),
	)

	associations, err := c.ListAuthorAssociations(ctx)
	if err != nil {
		c.metrics.ObserveRun(c.clock.Since(startedAt), err)
		return nil, err
	}

	logger.InfoCtx(ctx, "Found author associations", zap.String("runID", runID), zap.Int("count", len(associations)))

	outcomes := c.checkAll(ctx, associations)

	result := domain.NewJobResult(runID, startedAt, c.clock.Now(), outcomes)
	c.metrics.ObserveRun(c.clock.Since(startedAt), nil)

	for _, failure := range result.Failures() {
		logger.WarnCtx(ctx, "Association check failed",
			zap.String("runID", runID),
			zap.String("associationID", failure.AssociationID),
			zap.String("error", failure.Error),
		)
	}
	logger.InfoCtx(ctx, "Author associations check completed",
		zap.String("runID", runID),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("revoked", result.Revoked),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)

	return result, nil
}

// checkAll fans the checks out to a worker pool and waits for every one of them
// Outcomes keep the order of the associations
func (c *checker) checkAll(ctx context.Context, associations []domain.Association) []domain.CheckOutcome {
	// Not bound to ctx: a unit already running reports its own outcome after the deadline
	pool := pond.NewResultPool[domain.CheckOutcome](c.config.Concurrency)
	defer pool.StopAndWait()

	tasks := make([]pond.Result[domain.CheckOutcome], len(associations))
	for i, association := range associations {
		tasks[i] = pool.Submit(func() domain.CheckOutcome {
			if err := ctx.Err(); err != nil {
				// Abandoned before it could start
				outcome := c.failed(association, false, fmt.Errorf("check did not start: %w", err))
				c.metrics.ObserveOutcome(outcome.Status)
				return outcome
			}
			return c.CheckAssociation(ctx, association)
		})
	}

	outcomes := make([]domain.CheckOutcome, len(associations))
	for i, task := range tasks {
		outcome, err := task.Wait()
		if err != nil {
			// Panicked
			outcome = c.failed(associations[i], false, fmt.Errorf("check did not complete: %w", err))
			c.metrics.ObserveOutcome(outcome.Status)
		}
		outcomes[i] = outcome
	}

	return outcomes
}

func (c *checker) ListAuthorAssociations(ctx context.Context) ([]domain.Association, error) {
	associations, err := c.deso.ListAuthorAssociations(ctx, c.config.PlatformPublicKey, c.config.AssociationType)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("transactor", c.config.PlatformPublicKey))
		return nil, err
	}

	return associations, nil
}

func (c *checker) CheckAssociation(ctx context.Context, association domain.Association) domain.CheckOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.config.UnitTimeout)
	defer cancel()

	outcome := c.check(ctx, association)
	c.metrics.ObserveOutcome(outcome.Status)

	return outcome
}

func (c *checker) check(ctx context.Context, association domain.Association) domain.CheckOutcome {
	targetKey := association.TargetUserPublicKeyBase58Check
	if targetKey == "" {
		return c.failed(association, false, errors.New("association has no target user"))
	}

	nfts, err := c.deso.GetNFTsForUser(ctx, targetKey)
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("associationID", association.AssociationID),
			zap.String("target", targetKey),
		)
		return c.failed(association, false, err)
	}

	evaluation := c.evaluator.Evaluate(ctx, nfts, c.config.PlatformPublicKey)
	if !evaluation.Revocable {
		status := domain.CheckStatusActive
		if evaluation.MatchedPosts == 0 {
			status = domain.CheckStatusNoGrant
		}
		logger.DebugCtx(ctx, "Author association is valid",
			zap.String("associationID", association.AssociationID),
			zap.String("status", string(status)),
			zap.Int("matchedPosts", evaluation.MatchedPosts),
		)
		return domain.CheckOutcome{
			AssociationID:   association.AssociationID,
			TargetPublicKey: targetKey,
			Status:          status,
		}
	}

	logger.InfoCtx(ctx, "Author grant expired, removing association",
		zap.String("associationID", association.AssociationID),
		zap.String("target", targetKey),
		zap.String("postHash", evaluation.ExpiredPostHash),
	)

	if err := c.spatium.RemoveAuthorAssociation(ctx, association.AssociationID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("associationID", association.AssociationID))
		return c.failed(association, true, err)
	}

	c.publishRevocation(ctx, association)

	return domain.CheckOutcome{
		AssociationID:   association.AssociationID,
		TargetPublicKey: targetKey,
		Status:          domain.CheckStatusRevoked,
		Expired:         true,
	}
}

// publishRevocation emits the revocation event
// A publish failure neither undoes nor fails the revocation
func (c *checker) publishRevocation(ctx context.Context, association domain.Association) {
	if c.publisher == nil {
		return
	}

	event := &domain.RevocationEvent{
		EventID:         ulid.Make().String(),
		RunID:           RunIDFromContext(ctx),
		AssociationID:   association.AssociationID,
		TargetPublicKey: association.TargetUserPublicKeyBase58Check,
		AssociationType: association.AssociationType,
		RevokedAt:       c.clock.Now(),
	}

	if err := c.publisher.PublishRevocation(ctx, event); err != nil {
		c.metrics.ObservePublishFailure()
		logger.WarnCtx(ctx, "Failed to publish revocation event",
			zap.String("associationID", association.AssociationID),
			zap.Error(err),
		)
	}
}

func (c *checker) failed(association domain.Association, expired bool, err error) domain.CheckOutcome {
	return domain.CheckOutcome{
		AssociationID:   association.AssociationID,
		TargetPublicKey: association.TargetUserPublicKeyBase58Check,
		Status:          domain.CheckStatusFailed,
		Expired:         expired,
		Error:           err.Error(),
	}
}
