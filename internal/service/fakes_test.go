package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
)

var errSendFailed = errors.New("send failed")

type fakeFeeds struct {
	mu            sync.Mutex
	entries       []domain.Entry
	feeds         map[int64]*domain.Feed
	subscriptions []domain.Subscription
	subscribeErr  error
	subscribed    []string
	acked         [][]int64
	ackErr        error
}

func newFakeFeeds() *fakeFeeds {
	return &fakeFeeds{feeds: make(map[int64]*domain.Feed)}
}

func (f *fakeFeeds) GetFeed(_ context.Context, feedID int64) (*domain.Feed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, ok := f.feeds[feedID]
	return feed, ok
}

func (f *fakeFeeds) Icon(string) (domain.Icon, bool) {
	return domain.Icon{}, false
}

func (f *fakeFeeds) FetchUnreadEntries(context.Context) []domain.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries
}

func (f *fakeFeeds) AcknowledgeEntries(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}
	f.acked = append(f.acked, append([]int64(nil), ids...))
	return f.ackErr
}

func (f *fakeFeeds) Subscribe(_ context.Context, feedURL string) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, feedURL)
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	sub := domain.Subscription{
		ID:      int64(len(f.subscriptions) + 100),
		FeedID:  int64(len(f.subscriptions) + 1000),
		Title:   "Feed at " + feedURL,
		FeedURL: feedURL,
	}
	f.subscriptions = append(f.subscriptions, sub)
	return &sub, nil
}

func (f *fakeFeeds) ListSubscriptions(context.Context) []domain.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Subscription(nil), f.subscriptions...)
}

func (f *fakeFeeds) FindSubscriptionByURL(ctx context.Context, feedURL string) (*domain.Subscription, bool) {
	for _, sub := range f.ListSubscriptions(ctx) {
		if sub.FeedURL == feedURL {
			return &sub, true
		}
	}
	return nil, false
}

type sentMessage struct {
	ChannelID    string
	Notification domain.Notification
}

type fakeChannels struct {
	mu        sync.Mutex
	channels  []domain.Channel
	sent      []sentMessage
	deleted   []string
	nextID    int
	listErr   error
	createErr error
	deleteErr error
	// failTitles makes Send fail for notifications with these titles
	failTitles map[string]bool
}

func newFakeChannels(existing ...domain.Channel) *fakeChannels {
	return &fakeChannels{channels: existing, failTitles: make(map[string]bool)}
}

func (f *fakeChannels) List(context.Context) ([]domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Channel(nil), f.channels...), nil
}

func (f *fakeChannels) Create(_ context.Context, spec domain.ChannelSpec) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	ch := domain.Channel{
		ID:       fmt.Sprintf("new-%d", f.nextID),
		Name:     spec.Name,
		Kind:     spec.Kind,
		ParentID: spec.ParentID,
		Topic:    spec.Topic,
	}
	f.channels = append(f.channels, ch)
	return &ch, nil
}

func (f *fakeChannels) Delete(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID)
	return f.deleteErr
}

func (f *fakeChannels) Send(_ context.Context, channelID string, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTitles[n.Title] {
		return errSendFailed
	}
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Notification: n})
	return nil
}

func (f *fakeChannels) byKind(kind domain.ChannelKind) []domain.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Channel
	for _, ch := range f.channels {
		if ch.Kind == kind {
			out = append(out, ch)
		}
	}
	return out
}
