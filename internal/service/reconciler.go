package service

import (
	"context"
	"errors"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/metrics"
	"github.com/amiyamandal-dev/feedbridge/internal/repository"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// Reconciler rebuilds the feed to channel mapping from channel topics
type Reconciler struct {
	feeds    repository.FeedSource
	channels *ChannelProvisioner
	mapping  *store.Mapping
	logger   *logger.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(
	feeds repository.FeedSource,
	channels *ChannelProvisioner,
	mapping *store.Mapping,
	logger *logger.Logger,
) *Reconciler {
	return &Reconciler{
		feeds:    feeds,
		channels: channels,
		mapping:  mapping,
		logger:   logger.WithComponent("reconciler"),
	}
}

// Reconcile maps every channel under the reserved category whose topic names a
// subscribed feed URL. Channels that cannot be resolved are skipped. A missing
// category is not an error.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	r.logger.Info("Syncing feed mappings from channels")

	channels, err := r.channels.FeedChannels(ctx)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		r.logger.Info("No feed category found, starting fresh", "category", r.channels.Category())
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Failed to list feed channels", "error", err)
		return 0, err
	}

	urlToFeed := make(map[string]int64)
	for _, sub := range r.feeds.ListSubscriptions(ctx) {
		urlToFeed[sub.FeedURL] = sub.FeedID
	}

	mapped := 0
	for _, ch := range channels {
		if ch.FeedURL == "" {
			continue
		}
		feedID, ok := urlToFeed[ch.FeedURL]
		if !ok {
			r.logger.Debug("No subscription for channel topic", "channel_id", ch.ChannelID, "feed_url", ch.FeedURL)
			continue
		}
		r.mapping.Set(feedID, ch.ChannelID)
		mapped++
	}

	metrics.MappedFeeds.Set(float64(r.mapping.Len()))
	r.logger.Info("Synced feed mappings", "count", mapped)
	return mapped, nil
}
