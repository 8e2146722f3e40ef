package service

import (
	"context"
	"errors"
	"strings"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/metrics"
	"github.com/amiyamandal-dev/feedbridge/internal/repository"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/internal/validator"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// AddResult describes the outcome of a successful add
type AddResult struct {
	Subscription *domain.Subscription
	ChannelID    string
	// Duplicate is set when the feed already had a channel
	Duplicate bool
}

// RemoveResult describes the outcome of a successful remove
type RemoveResult struct {
	FeedID int64
	// Deleted is false when the mapping was dropped but the channel survived
	Deleted bool
}

// SubscriptionService implements the add, remove and list feed commands
type SubscriptionService struct {
	feeds     repository.FeedSource
	channels  repository.ChannelRepository
	provision *ChannelProvisioner
	mapping   *store.Mapping
	validator *validator.Validator
	logger    *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	feeds repository.FeedSource,
	channels repository.ChannelRepository,
	provision *ChannelProvisioner,
	mapping *store.Mapping,
	validator *validator.Validator,
	logger *logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		feeds:     feeds,
		channels:  channels,
		provision: provision,
		mapping:   mapping,
		validator: validator,
		logger:    logger.WithComponent("subscription-service"),
	}
}

// Add subscribes to feedURL upstream and gives it a channel.
// An existing upstream subscription is reused.
func (s *SubscriptionService) Add(ctx context.Context, feedURL string) (*AddResult, error) {
	feedURL = strings.TrimSpace(feedURL)
	if err := s.validator.FeedURL(feedURL); err != nil {
		return nil, err
	}

	sub, ok := s.feeds.FindSubscriptionByURL(ctx, feedURL)
	if !ok {
		var err error
		sub, err = s.feeds.Subscribe(ctx, feedURL)
		if err != nil {
			s.logger.Warn("Subscribe failed", "feed_url", feedURL, "error", err)
			return nil, err
		}
	}

	if channelID, mapped := s.mapping.ChannelFor(sub.FeedID); mapped {
		return &AddResult{Subscription: sub, ChannelID: channelID, Duplicate: true}, nil
	}

	channel, err := s.provision.CreateFeedChannel(ctx, sub.Title, sub.FeedURL)
	if err != nil {
		s.logger.Error("Error adding feed", "feed_url", feedURL, "error", err)
		return nil, err
	}

	s.mapping.Set(sub.FeedID, channel.ID)
	metrics.MappedFeeds.Set(float64(s.mapping.Len()))

	s.logger.Info("Feed added", "feed_id", sub.FeedID, "title", sub.Title, "channel_id", channel.ID)
	return &AddResult{Subscription: sub, ChannelID: channel.ID}, nil
}

// Remove drops the mapping for channelID and deletes the channel.
// The upstream subscription is left untouched.
func (s *SubscriptionService) Remove(ctx context.Context, channelID string) (*RemoveResult, error) {
	feedID, ok := s.mapping.RemoveByChannel(channelID)
	if !ok {
		return nil, domain.ErrChannelNotMapped
	}
	metrics.MappedFeeds.Set(float64(s.mapping.Len()))

	result := &RemoveResult{FeedID: feedID, Deleted: true}
	if err := s.channels.Delete(ctx, channelID); err != nil {
		s.logger.Error("Could not delete channel", "channel_id", channelID, "error", err)
		result.Deleted = false
	}

	s.logger.Info("Feed removed", "feed_id", feedID, "channel_id", channelID)
	return result, nil
}

// List returns the feed channels under the reserved category.
// A missing category yields an empty list.
func (s *SubscriptionService) List(ctx context.Context) ([]FeedChannel, error) {
	channels, err := s.provision.FeedChannels(ctx)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to list feed channels", "error", err)
		return nil, err
	}
	return channels, nil
}
