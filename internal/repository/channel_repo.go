package repository

import (
	"context"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
)

// ChannelRepository defines the destination operations for the configured guild
type ChannelRepository interface {
	// List returns every channel in the guild
	List(ctx context.Context) ([]domain.Channel, error)

	// Create creates a channel from spec
	Create(ctx context.Context, spec domain.ChannelSpec) (*domain.Channel, error)

	// Delete removes a channel by ID
	Delete(ctx context.Context, channelID string) error

	// Send posts a notification to a text channel
	Send(ctx context.Context, channelID string, n domain.Notification) error
}
