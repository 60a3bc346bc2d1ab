package deso

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

const (
	USER_ASSOCIATIONS_QUERY_PATH = "/api/v0/user-associations/query"
	GET_NFTS_FOR_USER_PATH       = "/api/v0/get-nfts-for-user"

	DEFAULT_PAGE_LIMIT = 100

	contentTypeJSON = "application/json"
)

// UserAssociationQuery is the request body of the user associations query endpoint
// Unset filters are omitted so the node does not apply them
type UserAssociationQuery struct {
	TransactorPublicKeyBase58Check string `json:"TransactorPublicKeyBase58Check,omitempty"`
	TargetUserPublicKeyBase58Check string `json:"TargetUserPublicKeyBase58Check,omitempty"`
	AppPublicKeyBase58Check        string `json:"AppPublicKeyBase58Check,omitempty"`
	AssociationType                string `json:"AssociationType,omitempty"`
	AssociationValue               string `json:"AssociationValue,omitempty"`
	Limit                          int    `json:"Limit,omitempty"`
	LastSeenAssociationID          string `json:"LastSeenAssociationID,omitempty"`
	SortDescending                 bool   `json:"SortDescending,omitempty"`
}

// UserAssociationsResponse is the response body of the user associations query endpoint
type UserAssociationsResponse struct {
	Associations []domain.Association `json:"Associations"`
}

// UserNFTsRequest is the request body of the get NFTs for user endpoint
type UserNFTsRequest struct {
	UserPublicKeyBase58Check string `json:"UserPublicKeyBase58Check"`
}

// UserNFTsResponse is the response body of the get NFTs for user endpoint
type UserNFTsResponse struct {
	NFTsMap domain.NFTsMap `json:"NFTsMap"`
}

// Client defines the interface for DeSo node operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/deso_client.go -package=mocks -mock_names=Client=MockDesoClient
type Client interface {
	// ListAuthorAssociations returns every association of the given type created by the transactor
	// Pages are followed until the node returns a short page
	ListAuthorAssociations(ctx context.Context, transactorPublicKey string, associationType string) ([]domain.Association, error)

	// GetNFTsForUser returns the NFTs held by the user keyed by post hash
	GetNFTsForUser(ctx context.Context, publicKey string) (domain.NFTsMap, error)
}

// DesoClient implements Client against a DeSo node HTTP API
type DesoClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	nodeURL    string
	pageLimit  int
}

// NewClient creates a new DeSo node client
func NewClient(httpClient adapter.HTTPClient, jsonAdapter adapter.JSON, nodeURL string, pageLimit int) Client {
	if pageLimit <= 0 {
		pageLimit = DEFAULT_PAGE_LIMIT
	}

	return &DesoClient{
		httpClient: httpClient,
		json:       jsonAdapter,
		nodeURL:    strings.TrimSuffix(nodeURL, "/"),
		pageLimit:  pageLimit,
	}
}

// ListAuthorAssociations returns every association of the given type created by the transactor
func (c *DesoClient) ListAuthorAssociations(ctx context.Context, transactorPublicKey string, associationType string) ([]domain.Association, error) {
	url := c.nodeURL + USER_ASSOCIATIONS_QUERY_PATH

	var all []domain.Association
	lastSeen := ""
	for page := 1; ; page++ {
		query := UserAssociationQuery{
			TransactorPublicKeyBase58Check: transactorPublicKey,
			AssociationType:                associationType,
			Limit:                          c.pageLimit,
			LastSeenAssociationID:          lastSeen,
		}

		var response UserAssociationsResponse
		if err := c.post(ctx, url, query, &response); err != nil {
			return nil, &domain.FetchError{Resource: "all associations", Err: err}
		}

		all = append(all, response.Associations...)
		logger.DebugCtx(ctx, "Fetched associations page",
			zap.Int("page", page),
			zap.Int("count", len(response.Associations)),
		)

		if len(response.Associations) < c.pageLimit {
			break
		}

		next := response.Associations[len(response.Associations)-1].AssociationID
		if next == "" || next == lastSeen {
			break
		}
		lastSeen = next
	}

	// The node filters already, but a misbehaving node must not widen the revocation scope
	matched := lo.Filter(all, func(a domain.Association, _ int) bool {
		return a.TransactorPublicKeyBase58Check == transactorPublicKey && a.AssociationType == associationType
	})
	if skipped := len(all) - len(matched); skipped > 0 {
		logger.WarnCtx(ctx, "Skipped associations not matching the query",
			zap.Int("skipped", skipped),
			zap.String("transactor", transactorPublicKey),
			zap.String("associationType", associationType),
		)
	}

	return lo.UniqBy(matched, func(a domain.Association) string {
		return a.AssociationID
	}), nil
}

// GetNFTsForUser returns the NFTs held by the user keyed by post hash
func (c *DesoClient) GetNFTsForUser(ctx context.Context, publicKey string) (domain.NFTsMap, error) {
	url := c.nodeURL + GET_NFTS_FOR_USER_PATH

	var response UserNFTsResponse
	if err := c.post(ctx, url, UserNFTsRequest{UserPublicKeyBase58Check: publicKey}, &response); err != nil {
		return nil, &domain.FetchError{Resource: "all nfts", Err: err}
	}

	if response.NFTsMap == nil {
		return domain.NFTsMap{}, nil
	}

	return response.NFTsMap, nil
}

// post sends a JSON request and decodes the JSON response into result
func (c *DesoClient) post(ctx context.Context, url string, request any, result any) error {
	body, err := c.json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.httpClient.Post(ctx, url, contentTypeJSON, body)
	if err != nil {
		return err
	}

	if err := c.json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
