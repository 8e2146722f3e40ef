package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/metrics"
	"github.com/amiyamandal-dev/feedbridge/internal/service"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

const (
	commandName     = "feed"
	maxMessageRunes = 2000

	msgWrongGuild = "This bot is not configured for this server."
	msgNoFeeds    = "No feeds subscribed. Use `/feed add` to add one."
	msgNotMapped  = "This channel is not associated with any RSS feed."
	msgAddFailed  = "An error occurred while adding the feed. Please try again."
	msgRemoveFail = "An error occurred while removing the feed. Please try again."
	msgListFailed = "An error occurred while listing feeds. Please try again."
	msgBusy       = "The bot is shutting down, please try again later."
)

// FeedCommands is the command logic behind /feed
type FeedCommands interface {
	Add(ctx context.Context, feedURL string) (*service.AddResult, error)
	Remove(ctx context.Context, channelID string) (*service.RemoveResult, error)
	List(ctx context.Context) ([]service.FeedChannel, error)
}

// responder is the part of a discordgo session used to answer interactions
type responder interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// FeedCommand builds the /feed application command definition
func FeedCommand() *discordgo.ApplicationCommand {
	manageChannels := int64(discordgo.PermissionManageChannels)
	return &discordgo.ApplicationCommand{
		Name:                     commandName,
		Description:              "Manage RSS feed subscriptions",
		DefaultMemberPermissions: &manageChannels,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Subscribe to an RSS feed",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "The RSS feed URL",
					Required:    true,
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Unsubscribe from an RSS feed",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The feed channel to remove",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List all subscribed feeds",
			},
		},
	}
}

// Commands routes /feed interactions from the configured guild onto the
// dispatcher
type Commands struct {
	feeds      FeedCommands
	dispatcher *service.Dispatcher
	appID      string
	guildID    string
	logger     *logger.Logger
}

// NewCommands creates the command router
func NewCommands(feeds FeedCommands, dispatcher *service.Dispatcher, appID, guildID string, logger *logger.Logger) *Commands {
	return &Commands{
		feeds:      feeds,
		dispatcher: dispatcher,
		appID:      appID,
		guildID:    guildID,
		logger:     logger.WithComponent("discord"),
	}
}

// Register installs the /feed command for the guild and starts routing
// interactions. Jobs submitted on behalf of interactions run under ctx.
// The returned func removes the interaction handler.
func (c *Commands) Register(ctx context.Context, session *discordgo.Session) (func(), error) {
	c.logger.Info("Registering slash commands")
	_, err := session.ApplicationCommandBulkOverwrite(c.appID, c.guildID,
		[]*discordgo.ApplicationCommand{FeedCommand()},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	c.logger.Info("Slash commands registered")

	remove := session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		c.handle(ctx, s, i.Interaction)
	})
	return remove, nil
}

func (c *Commands) handle(ctx context.Context, r responder, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName || len(data.Options) == 0 {
		return
	}

	if i.GuildID != c.guildID {
		err := r.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: msgWrongGuild,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			c.logger.Error("Failed to reject interaction", "guild_id", i.GuildID, "error", err)
		}
		return
	}

	sub := data.Options[0]
	run, ok := c.route(sub, data.Resolved)
	if !ok {
		return
	}

	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		c.logger.Error("Failed to defer interaction", "command", sub.Name, "error", err)
		return
	}

	err = c.dispatcher.Submit(ctx, "command:"+sub.Name, func(ctx context.Context) {
		c.reply(r, i, sub.Name, run(ctx))
	})
	if err != nil {
		c.reply(r, i, sub.Name, msgBusy)
	}
}

// route maps a subcommand to the job producing its reply text
func (c *Commands) route(
	sub *discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) (func(ctx context.Context) string, bool) {
	switch sub.Name {
	case "add":
		feedURL := optionString(sub.Options, "url")
		return func(ctx context.Context) string {
			result, err := c.feeds.Add(ctx, feedURL)
			metrics.Commands.WithLabelValues("add", outcome(err)).Inc()
			return addReply(result, err)
		}, true

	case "remove":
		channelID, name := optionChannel(sub.Options, "channel", resolved)
		return func(ctx context.Context) string {
			result, err := c.feeds.Remove(ctx, channelID)
			metrics.Commands.WithLabelValues("remove", outcome(err)).Inc()
			if err != nil && !errors.Is(err, domain.ErrChannelNotMapped) {
				c.logger.Error("Error removing feed", "channel_id", channelID, "error", err)
			}
			if err == nil && !result.Deleted {
				c.logger.Warn("Feed unmapped but channel kept", "channel_id", channelID)
			}
			return removeReply(name, err)
		}, true

	case "list":
		return func(ctx context.Context) string {
			feeds, err := c.feeds.List(ctx)
			metrics.Commands.WithLabelValues("list", outcome(err)).Inc()
			if err != nil {
				c.logger.Error("Error listing feeds", "error", err)
			}
			return listReply(feeds, err)
		}, true
	}

	c.logger.Warn("Unknown subcommand", "command", sub.Name)
	return nil, false
}

func (c *Commands) reply(r responder, i *discordgo.Interaction, command, content string) {
	if _, err := r.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
		c.logger.Error("Failed to edit interaction reply", "command", command, "error", err)
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func optionChannel(
	opts []*discordgo.ApplicationCommandInteractionDataOption,
	name string,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) (id, channelName string) {
	for _, opt := range opts {
		if opt.Name != name || opt.Type != discordgo.ApplicationCommandOptionChannel {
			continue
		}
		id = opt.ChannelValue(nil).ID
		channelName = id
		if resolved != nil {
			if ch, ok := resolved.Channels[id]; ok && ch.Name != "" {
				channelName = ch.Name
			}
		}
		return id, channelName
	}
	return "", ""
}

func mention(channelID string) string {
	return "<#" + channelID + ">"
}

func addReply(result *service.AddResult, err error) string {
	var upstream *domain.UpstreamError
	switch {
	case err == nil && result.Duplicate:
		return "Already subscribed to this feed in " + mention(result.ChannelID)
	case err == nil:
		return fmt.Sprintf("Subscribed to **%s**! New items will be posted in %s",
			result.Subscription.Title, mention(result.ChannelID))
	case errors.Is(err, domain.ErrValidationFailed):
		return "Please provide a valid http(s) feed URL."
	case errors.Is(err, domain.ErrFeedNotFound):
		return "Failed to subscribe to feed: Feed URL not found or not a valid RSS feed"
	case errors.Is(err, domain.ErrInvalidFeedURL):
		return "Failed to subscribe to feed: Invalid feed URL format"
	case errors.Is(err, domain.ErrSubscriptionLost):
		return "Failed to subscribe to feed: Feed exists but could not fetch details"
	case errors.Is(err, domain.ErrUpstreamNetwork):
		return "Failed to subscribe to feed: Network error subscribing to feed"
	case errors.As(err, &upstream):
		return fmt.Sprintf("Failed to subscribe to feed: Feedbin API error: %d", upstream.Status)
	default:
		return msgAddFailed
	}
}

func removeReply(channelName string, err error) string {
	switch {
	case errors.Is(err, domain.ErrChannelNotMapped):
		return msgNotMapped
	case err != nil:
		return msgRemoveFail
	}
	return fmt.Sprintf("Unsubscribed from **%s** and deleted the channel.", channelName)
}

func listReply(feeds []service.FeedChannel, err error) string {
	if err != nil {
		return msgListFailed
	}
	if len(feeds) == 0 {
		return msgNoFeeds
	}

	// leave room for the overflow marker
	budget := maxMessageRunes - len("\n...and 0000 more")

	var b strings.Builder
	b.WriteString("**Subscribed Feeds:**")
	used := b.Len()
	for i, f := range feeds {
		line := fmt.Sprintf("\n- %s: %s", mention(f.ChannelID), f.FeedURL)
		n := utf8.RuneCountInString(line)
		if used+n > budget {
			fmt.Fprintf(&b, "\n...and %d more", len(feeds)-i)
			break
		}
		b.WriteString(line)
		used += n
	}
	return b.String()
}
