package messaging

import (
	"context"

	"github.com/feral-file/ff-author-checker/internal/domain"
)

// Publisher defines the interface for publishing events to message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishRevocation publishes a revoked author association to the message broker
	PublishRevocation(ctx context.Context, event *domain.RevocationEvent) error
	// Close closes the connection
	Close()
}
