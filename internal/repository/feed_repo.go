package repository

import (
	"context"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
)

// FeedSource defines the upstream feed service operations the bridge relies on.
// Read paths never fail; they degrade to empty or absent results.
type FeedSource interface {
	// GetFeed retrieves feed metadata by ID
	GetFeed(ctx context.Context, feedID int64) (*domain.Feed, bool)

	// Icon retrieves a cached icon by scheme-less host
	Icon(host string) (domain.Icon, bool)

	// FetchUnreadEntries retrieves entries that arrived since the last poll
	FetchUnreadEntries(ctx context.Context) []domain.Entry

	// AcknowledgeEntries marks entries as read
	AcknowledgeEntries(ctx context.Context, ids []int64) error

	// Subscribe creates a subscription, returning the existing one if present
	Subscribe(ctx context.Context, feedURL string) (*domain.Subscription, error)

	// ListSubscriptions retrieves all subscriptions
	ListSubscriptions(ctx context.Context) []domain.Subscription

	// FindSubscriptionByURL retrieves a subscription by exact feed URL
	FindSubscriptionByURL(ctx context.Context, feedURL string) (*domain.Subscription, bool)
}
