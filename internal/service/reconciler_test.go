package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

func newTestReconciler(feeds *fakeFeeds, channels *fakeChannels, mapping *store.Mapping) *Reconciler {
	log := logger.Nop()
	return NewReconciler(feeds, NewChannelProvisioner(channels, DefaultCategory, log), mapping, log)
}

func TestReconcileMapsResolvableChannels(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.subscriptions = []domain.Subscription{
		{FeedID: 1, FeedURL: "https://a.test/feed"},
		{FeedID: 2, FeedURL: "https://b.test/feed"},
	}
	channels := newFakeChannels(
		domain.Channel{ID: "cat", Name: "RSS", Kind: domain.ChannelCategory},
		domain.Channel{ID: "ca", Kind: domain.ChannelText, ParentID: "cat", Topic: "RSS feed: https://a.test/feed"},
		domain.Channel{ID: "cb", Kind: domain.ChannelText, ParentID: "cat", Topic: "RSS feed: https://b.test/feed"},
		domain.Channel{ID: "unsubscribed", Kind: domain.ChannelText, ParentID: "cat", Topic: "RSS feed: https://gone.test/feed"},
		domain.Channel{ID: "chat", Kind: domain.ChannelText, ParentID: "cat", Topic: "general chatter"},
		domain.Channel{ID: "notopic", Kind: domain.ChannelText, ParentID: "cat"},
		domain.Channel{ID: "outside", Kind: domain.ChannelText, Topic: "RSS feed: https://a.test/feed"},
	)
	mapping := store.NewMapping()

	count, err := newTestReconciler(feeds, channels, mapping).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t, map[int64]string{1: "ca", 2: "cb"}, mapping.Snapshot())
	assert.Zero(t, channels.nextID, "reconcile never creates channels")
}

func TestReconcileWithoutCategory(t *testing.T) {
	feeds := newFakeFeeds()
	channels := newFakeChannels(domain.Channel{ID: "x", Name: "general", Kind: domain.ChannelText})
	mapping := store.NewMapping()

	count, err := newTestReconciler(feeds, channels, mapping).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, channels.byKind(domain.ChannelCategory))
}

func TestReconcileListingFailure(t *testing.T) {
	channels := newFakeChannels()
	channels.listErr = errors.New("gateway down")

	_, err := newTestReconciler(newFakeFeeds(), channels, store.NewMapping()).Reconcile(context.Background())
	assert.Error(t, err)
}
