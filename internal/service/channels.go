package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/metrics"
	"github.com/amiyamandal-dev/feedbridge/internal/repository"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

const (
	// DefaultCategory is the reserved category holding feed channels
	DefaultCategory = "RSS"

	// MaxChannelName is the destination limit on channel names
	MaxChannelName = 100

	fallbackChannelName = "feed"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphens  = regexp.MustCompile(`-+`)
)

// SanitizeChannelName turns a feed title into a valid channel name
func SanitizeChannelName(title string) string {
	name := strings.ToLower(title)
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > MaxChannelName {
		name = name[:MaxChannelName]
	}
	return name
}

// FeedChannel is a text channel under the reserved category
type FeedChannel struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	FeedURL   string `json:"feed_url,omitempty"`
}

// ChannelProvisioner locates and creates channels under the reserved category
type ChannelProvisioner struct {
	channels repository.ChannelRepository
	category string
	logger   *logger.Logger
}

// NewChannelProvisioner creates a provisioner for the named category
func NewChannelProvisioner(channels repository.ChannelRepository, category string, logger *logger.Logger) *ChannelProvisioner {
	if category == "" {
		category = DefaultCategory
	}
	return &ChannelProvisioner{
		channels: channels,
		category: category,
		logger:   logger.WithComponent("channels"),
	}
}

// Category returns the reserved category name
func (p *ChannelProvisioner) Category() string {
	return p.category
}

// FindCategory looks up the reserved category by exact name
func (p *ChannelProvisioner) FindCategory(ctx context.Context) (*domain.Channel, []domain.Channel, error) {
	all, err := p.channels.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list channels: %w", err)
	}

	category, ok := lo.Find(all, func(c domain.Channel) bool {
		return c.Kind == domain.ChannelCategory && c.Name == p.category
	})
	if !ok {
		return nil, all, domain.ErrCategoryNotFound
	}
	return &category, all, nil
}

// EnsureCategory returns the reserved category, creating it when missing
func (p *ChannelProvisioner) EnsureCategory(ctx context.Context) (*domain.Channel, error) {
	category, _, err := p.FindCategory(ctx)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, err
	}

	category, err = p.channels.Create(ctx, domain.ChannelSpec{
		Name: p.category,
		Kind: domain.ChannelCategory,
	})
	if err != nil {
		p.logger.Error("Failed to create category", "category", p.category, "error", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	p.logger.Info("Created category", "category", p.category, "channel_id", category.ID)
	return category, nil
}

// FeedChannels lists the text channels under the reserved category with the
// feed URL parsed from each topic. It returns ErrCategoryNotFound when the
// category does not exist.
func (p *ChannelProvisioner) FeedChannels(ctx context.Context) ([]FeedChannel, error) {
	category, all, err := p.FindCategory(ctx)
	if err != nil {
		return nil, err
	}

	children := lo.Filter(all, func(c domain.Channel, _ int) bool {
		return c.Kind == domain.ChannelText && c.ParentID == category.ID
	})
	return lo.Map(children, func(c domain.Channel, _ int) FeedChannel {
		url, _ := domain.ParseFeedTopic(c.Topic)
		return FeedChannel{ChannelID: c.ID, Name: c.Name, FeedURL: url}
	}), nil
}

// CreateFeedChannel creates a text channel for a feed under the reserved
// category, creating the category first if needed
func (p *ChannelProvisioner) CreateFeedChannel(ctx context.Context, title, feedURL string) (*domain.Channel, error) {
	category, err := p.EnsureCategory(ctx)
	if err != nil {
		return nil, err
	}

	name := SanitizeChannelName(title)
	if name == "" {
		name = fallbackChannelName
	}

	channel, err := p.channels.Create(ctx, domain.ChannelSpec{
		Name:     name,
		Kind:     domain.ChannelText,
		ParentID: category.ID,
		Topic:    domain.FeedTopic(feedURL),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrChannelNotCreated, name, err)
	}

	metrics.ChannelsCreated.Inc()
	p.logger.Info("Created feed channel", "channel", name, "channel_id", channel.ID, "feed_url", feedURL)
	return channel, nil
}
