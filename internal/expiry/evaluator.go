package expiry

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

// Evaluation is the detailed result of evaluating a user's NFTs
type Evaluation struct {
	// MatchedPosts is the number of NFTs posted by the expected poster
	MatchedPosts int
	// MarkedPosts is the number of matched NFTs carrying both grant markers
	MarkedPosts int
	// ExpiredPostHash is the first post found expired and type matched
	ExpiredPostHash string
	// Revocable is true when at least one matched NFT is an expired author grant
	Revocable bool
	// ParseErrors holds the marker values that could not be parsed
	ParseErrors []error
}

// Evaluator decides whether an author grant has expired
//
//go:generate mockgen -source=evaluator.go -destination=../mocks/evaluator.go -package=mocks -mock_names=Evaluator=MockEvaluator
type Evaluator interface {
	// IsAuthorExpired reports whether any NFT posted by expectedPoster is an expired author grant
	IsAuthorExpired(ctx context.Context, nfts domain.NFTsMap, expectedPoster string) bool

	// Evaluate is IsAuthorExpired with the details of the decision
	Evaluate(ctx context.Context, nfts domain.NFTsMap, expectedPoster string) Evaluation
}

type evaluator struct {
	clock         adapter.Clock
	authorNFTType string
}

// NewEvaluator creates a new expiry evaluator
// authorNFTType is the nft_type value identifying author grants
func NewEvaluator(clock adapter.Clock, authorNFTType string) Evaluator {
	if authorNFTType == "" {
		authorNFTType = domain.DEFAULT_AUTHOR_NFT_TYPE
	}

	return &evaluator{
		clock:         clock,
		authorNFTType: authorNFTType,
	}
}

func (e *evaluator) IsAuthorExpired(ctx context.Context, nfts domain.NFTsMap, expectedPoster string) bool {
	return e.Evaluate(ctx, nfts, expectedPoster).Revocable
}

func (e *evaluator) Evaluate(ctx context.Context, nfts domain.NFTsMap, expectedPoster string) Evaluation {
	var evaluation Evaluation

	matched := lo.PickBy(nfts, func(_ string, nft domain.NFTData) bool {
		return nft.PostEntryResponse.PosterPublicKeyBase58Check == expectedPoster
	})
	evaluation.MatchedPosts = len(matched)
	if len(matched) == 0 {
		return evaluation
	}

	now := e.clock.Now()

	postHashes := lo.Keys(matched)
	sort.Strings(postHashes)
	for _, postHash := range postHashes {
		extraData := matched[postHash].PostEntryResponse.PostExtraData

		expirationDate, hasExpiration := extraData[domain.EXTRA_DATA_EXPIRATION_DATE]
		nftType, hasType := extraData[domain.EXTRA_DATA_NFT_TYPE]
		if !hasExpiration || !hasType {
			continue
		}
		evaluation.MarkedPosts++

		expired, err := IsExpired(expirationDate, now)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping NFT with malformed expiration date",
				zap.String("postHash", postHash),
				zap.Error(err),
			)
			evaluation.ParseErrors = append(evaluation.ParseErrors, err)
			continue
		}

		if expired && nftType == e.authorNFTType && !evaluation.Revocable {
			evaluation.Revocable = true
			evaluation.ExpiredPostHash = postHash
		}
	}

	return evaluation
}

// IsExpired reports whether now is strictly past the expiration date
// expirationDate is a base-10 Unix timestamp in seconds
func IsExpired(expirationDate string, now time.Time) (bool, error) {
	expiration, err := strconv.ParseInt(expirationDate, 10, 64)
	if err != nil {
		return false, &domain.ParseError{
			Key:   domain.EXTRA_DATA_EXPIRATION_DATE,
			Value: expirationDate,
			Err:   err,
		}
	}

	return now.Unix() > expiration, nil
}
