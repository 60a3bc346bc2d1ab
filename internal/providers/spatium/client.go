package spatium

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/adapter"
	"github.com/feral-file/ff-author-checker/internal/domain"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

// REMOVE_AUTHOR_ASSOCIATION_PATH is the app service route revoking an author association
const REMOVE_AUTHOR_ASSOCIATION_PATH = "/api/remove-author-association/"

// Client defines the interface for app service operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/spatium_client.go -package=mocks -mock_names=Client=MockSpatiumClient
type Client interface {
	// RemoveAuthorAssociation asks the app service to revoke the association
	// The call is attempted once; any 2xx answer is a success
	RemoveAuthorAssociation(ctx context.Context, associationID string) error
}

// SpatiumClient implements Client against the Spatium app service
type SpatiumClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewClient creates a new app service client
func NewClient(httpClient adapter.HTTPClient, baseURL string) Client {
	return &SpatiumClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// RemoveAuthorAssociation asks the app service to revoke the association
func (c *SpatiumClient) RemoveAuthorAssociation(ctx context.Context, associationID string) error {
	if associationID == "" {
		return &domain.CallError{Err: domain.ErrEmptyAssociationID}
	}

	endpoint := fmt.Sprintf("%s%s%s", c.baseURL, REMOVE_AUTHOR_ASSOCIATION_PATH, url.PathEscape(associationID))
	if _, err := c.httpClient.PostNoRetry(ctx, endpoint, "", nil); err != nil {
		return &domain.CallError{AssociationID: associationID, Err: err}
	}

	logger.InfoCtx(ctx, "Removed author association", zap.String("associationID", associationID))

	return nil
}
