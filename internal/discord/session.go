package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

const (
	openRetries      = 5
	unsubscribeNote  = "RSS feed unsubscribed"
	openInitialDelay = time.Second
)

// Open creates a gateway session for a bot token and connects it, retrying
// with exponential backoff
func Open(ctx context.Context, token string, log *logger.Logger) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	log = log.WithComponent("discord")
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info("Logged in", "user", r.User.String(), "guilds", len(r.Guilds))
	})

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = openInitialDelay
	policy.MaxInterval = 30 * time.Second

	err = backoff.RetryNotify(
		session.Open,
		backoff.WithContext(backoff.WithMaxRetries(policy, openRetries), ctx),
		func(err error, next time.Duration) {
			log.Warn("Failed to open discord session, retrying", "error", err, "retry_in", next.String())
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	return session, nil
}

// Guild exposes the channels of one guild through a discordgo session
type Guild struct {
	session *discordgo.Session
	guildID string
}

// NewGuild binds session to guildID
func NewGuild(session *discordgo.Session, guildID string) *Guild {
	return &Guild{session: session, guildID: guildID}
}

// List returns every channel in the guild
func (g *Guild) List(ctx context.Context) ([]domain.Channel, error) {
	channels, err := g.session.GuildChannels(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild channels: %w", err)
	}

	out := make([]domain.Channel, 0, len(channels))
	for _, c := range channels {
		out = append(out, fromChannel(c))
	}
	return out, nil
}

// Create creates a text channel or category
func (g *Guild) Create(ctx context.Context, spec domain.ChannelSpec) (*domain.Channel, error) {
	created, err := g.session.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     channelType(spec.Kind),
		Topic:    spec.Topic,
		ParentID: spec.ParentID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create channel %q: %w", spec.Name, err)
	}

	ch := fromChannel(created)
	return &ch, nil
}

// Delete removes a channel
func (g *Guild) Delete(ctx context.Context, channelID string) error {
	_, err := g.session.ChannelDelete(channelID,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(unsubscribeNote),
	)
	if err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

// Send posts a notification as a single embed
func (g *Guild) Send(ctx context.Context, channelID string, n domain.Notification) error {
	if _, err := g.session.ChannelMessageSendEmbed(channelID, toEmbed(n), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}
