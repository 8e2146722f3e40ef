package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/service"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     chan string
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{edits: make(chan string, 4)}
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits <- *edit.Content
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) waitEdit(t *testing.T) string {
	t.Helper()
	select {
	case content := <-f.edits:
		return content
	case <-time.After(2 * time.Second):
		t.Fatal("no reply edit received")
		return ""
	}
}

type fakeFeedCommands struct {
	addURL    string
	addResult *service.AddResult
	addErr    error
	removedID string
	removeErr error
	list      []service.FeedChannel
}

func (f *fakeFeedCommands) Add(_ context.Context, feedURL string) (*service.AddResult, error) {
	f.addURL = feedURL
	return f.addResult, f.addErr
}

func (f *fakeFeedCommands) Remove(_ context.Context, channelID string) (*service.RemoveResult, error) {
	f.removedID = channelID
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	return &service.RemoveResult{FeedID: 1, Deleted: true}, nil
}

func (f *fakeFeedCommands) List(context.Context) ([]service.FeedChannel, error) {
	return f.list, nil
}

func newTestCommands(t *testing.T, feeds FeedCommands) (*Commands, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	d := service.NewDispatcher(4, logger.Nop())
	go d.Run(ctx)
	return NewCommands(feeds, d, "app", "guild", logger.Nop()), ctx
}

func feedInteraction(guildID string, sub *discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    "feed",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{sub},
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Channels: map[string]*discordgo.Channel{"c9": {ID: "c9", Name: "daring-fireball"}},
			},
		},
	}
}

func TestFeedCommandDefinition(t *testing.T) {
	cmd := FeedCommand()

	assert.Equal(t, "feed", cmd.Name)
	require.NotNil(t, cmd.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionManageChannels), *cmd.DefaultMemberPermissions)

	names := make([]string, 0, len(cmd.Options))
	for _, opt := range cmd.Options {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, opt.Type)
		names = append(names, opt.Name)
	}
	assert.Equal(t, []string{"add", "remove", "list"}, names)
	assert.True(t, cmd.Options[0].Options[0].Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionChannel, cmd.Options[1].Options[0].Type)
}

func TestHandleRejectsOtherGuilds(t *testing.T) {
	feeds := &fakeFeedCommands{}
	c, ctx := newTestCommands(t, feeds)
	r := newFakeResponder()

	c.handle(ctx, r, feedInteraction("elsewhere", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "list",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}))

	require.Len(t, r.responses, 1)
	resp := r.responses[0]
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, msgWrongGuild, resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Empty(t, r.edits)
}

func TestHandleAddDefersThenEdits(t *testing.T) {
	feeds := &fakeFeedCommands{addResult: &service.AddResult{
		Subscription: &domain.Subscription{Title: "Daring Fireball"},
		ChannelID:    "c9",
	}}
	c, ctx := newTestCommands(t, feeds)
	r := newFakeResponder()

	c.handle(ctx, r, feedInteraction("guild", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "add",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:  "url",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: "https://daringfireball.net/feeds/main",
		}},
	}))

	assert.Equal(t, "Subscribed to **Daring Fireball**! New items will be posted in <#c9>", r.waitEdit(t))
	assert.Equal(t, "https://daringfireball.net/feeds/main", feeds.addURL)
	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, r.responses[0].Type)
}

func TestHandleRemoveUsesResolvedName(t *testing.T) {
	feeds := &fakeFeedCommands{}
	c, ctx := newTestCommands(t, feeds)
	r := newFakeResponder()

	c.handle(ctx, r, feedInteraction("guild", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "remove",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:  "channel",
			Type:  discordgo.ApplicationCommandOptionChannel,
			Value: "c9",
		}},
	}))

	assert.Equal(t, "Unsubscribed from **daring-fireball** and deleted the channel.", r.waitEdit(t))
	assert.Equal(t, "c9", feeds.removedID)
}

func TestHandleList(t *testing.T) {
	feeds := &fakeFeedCommands{list: []service.FeedChannel{
		{ChannelID: "a", FeedURL: "https://a.test/feed"},
		{ChannelID: "b", FeedURL: "https://b.test/feed"},
	}}
	c, ctx := newTestCommands(t, feeds)
	r := newFakeResponder()

	c.handle(ctx, r, feedInteraction("guild", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "list",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}))

	assert.Equal(t, "**Subscribed Feeds:**\n- <#a>: https://a.test/feed\n- <#b>: https://b.test/feed", r.waitEdit(t))
}

func TestAddReply(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", fmt.Errorf("%w: bad", domain.ErrValidationFailed), "Please provide a valid http(s) feed URL."},
		{"not found", domain.ErrFeedNotFound, "Failed to subscribe to feed: Feed URL not found or not a valid RSS feed"},
		{"invalid", domain.ErrInvalidFeedURL, "Failed to subscribe to feed: Invalid feed URL format"},
		{"lost", domain.ErrSubscriptionLost, "Failed to subscribe to feed: Feed exists but could not fetch details"},
		{"network", fmt.Errorf("subscribe: %w: dial tcp", domain.ErrUpstreamNetwork), "Failed to subscribe to feed: Network error subscribing to feed"},
		{"status", domain.NewUpstreamError(503), "Failed to subscribe to feed: Feedbin API error: 503"},
		{"channel", fmt.Errorf("%w: x", domain.ErrChannelNotCreated), msgAddFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, addReply(nil, tt.err))
		})
	}

	dup := &service.AddResult{ChannelID: "c1", Duplicate: true}
	assert.Equal(t, "Already subscribed to this feed in <#c1>", addReply(dup, nil))
}

func TestRemoveReply(t *testing.T) {
	assert.Equal(t, msgNotMapped, removeReply("x", domain.ErrChannelNotMapped))
	assert.Equal(t, msgRemoveFail, removeReply("x", errors.New("boom")))
}

func TestListReply(t *testing.T) {
	assert.Equal(t, msgNoFeeds, listReply(nil, nil))
	assert.Equal(t, msgListFailed, listReply(nil, errors.New("boom")))

	many := make([]service.FeedChannel, 200)
	for i := range many {
		many[i] = service.FeedChannel{ChannelID: fmt.Sprint(i), FeedURL: "https://example.test/" + strings.Repeat("x", 20)}
	}
	out := listReply(many, nil)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), maxMessageRunes)
	assert.Contains(t, out, "more")
}
