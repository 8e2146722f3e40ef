package store

import "sync"

// Mapping is the bidirectional index between upstream feed IDs and
// destination channel IDs. Both directions are always updated under one lock,
// so for every installed pair (f, c) ChannelFor(f) == c and FeedFor(c) == f.
type Mapping struct {
	mu            sync.RWMutex
	feedToChannel map[int64]string
	channelToFeed map[string]int64
}

// NewMapping creates an empty mapping
func NewMapping() *Mapping {
	return &Mapping{
		feedToChannel: make(map[int64]string),
		channelToFeed: make(map[string]int64),
	}
}

// Set installs the pair (feedID, channelID). Any pair that shared either side
// with it is evicted first, so the last write wins.
func (m *Mapping) Set(feedID int64, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldChannel, ok := m.feedToChannel[feedID]; ok && oldChannel != channelID {
		delete(m.channelToFeed, oldChannel)
	}
	if oldFeed, ok := m.channelToFeed[channelID]; ok && oldFeed != feedID {
		delete(m.feedToChannel, oldFeed)
	}

	m.feedToChannel[feedID] = channelID
	m.channelToFeed[channelID] = feedID
}

// RemoveByChannel drops the pair owning channelID, if any, and reports the
// feed it belonged to
func (m *Mapping) RemoveByChannel(channelID string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	feedID, ok := m.channelToFeed[channelID]
	if !ok {
		return 0, false
	}
	delete(m.channelToFeed, channelID)
	delete(m.feedToChannel, feedID)
	return feedID, true
}

// ChannelFor returns the channel mapped to feedID
func (m *Mapping) ChannelFor(feedID int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channelID, ok := m.feedToChannel[feedID]
	return channelID, ok
}

// FeedFor returns the feed mapped to channelID
func (m *Mapping) FeedFor(channelID string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	feedID, ok := m.channelToFeed[channelID]
	return feedID, ok
}

// Snapshot returns a copy of the feed to channel direction
func (m *Mapping) Snapshot() map[int64]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]string, len(m.feedToChannel))
	for feedID, channelID := range m.feedToChannel {
		out[feedID] = channelID
	}
	return out
}

// Len returns the number of installed pairs
func (m *Mapping) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.feedToChannel)
}
