package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConsistent(t *testing.T, m *Mapping) {
	t.Helper()
	snapshot := m.Snapshot()
	assert.Equal(t, len(snapshot), m.Len())
	for feedID, channelID := range snapshot {
		gotChannel, ok := m.ChannelFor(feedID)
		require.True(t, ok)
		assert.Equal(t, channelID, gotChannel)

		gotFeed, ok := m.FeedFor(channelID)
		require.True(t, ok, "reverse lookup missing for channel %s", channelID)
		assert.Equal(t, feedID, gotFeed)
	}
}

func TestMappingSetAndLookup(t *testing.T) {
	m := NewMapping()
	m.Set(1, "c1")
	m.Set(2, "c2")

	channelID, ok := m.ChannelFor(1)
	require.True(t, ok)
	assert.Equal(t, "c1", channelID)

	feedID, ok := m.FeedFor("c2")
	require.True(t, ok)
	assert.Equal(t, int64(2), feedID)

	_, ok = m.ChannelFor(3)
	assert.False(t, ok)
	_, ok = m.FeedFor("c3")
	assert.False(t, ok)

	assertConsistent(t, m)
}

func TestMappingRemoveByChannel(t *testing.T) {
	m := NewMapping()
	m.Set(1, "c1")
	m.Set(2, "c2")

	feedID, ok := m.RemoveByChannel("c1")
	require.True(t, ok)
	assert.Equal(t, int64(1), feedID)

	_, ok = m.ChannelFor(1)
	assert.False(t, ok)
	_, ok = m.FeedFor("c1")
	assert.False(t, ok)

	_, ok = m.RemoveByChannel("c1")
	assert.False(t, ok)

	assert.Equal(t, 1, m.Len())
	assertConsistent(t, m)
}

func TestMappingSetMovesFeedToNewChannel(t *testing.T) {
	m := NewMapping()
	m.Set(1, "old")
	m.Set(1, "new")

	_, ok := m.FeedFor("old")
	assert.False(t, ok)
	channelID, _ := m.ChannelFor(1)
	assert.Equal(t, "new", channelID)
	assertConsistent(t, m)
}

func TestMappingSetReassignsChannel(t *testing.T) {
	m := NewMapping()
	m.Set(1, "shared")
	m.Set(2, "shared")

	_, ok := m.ChannelFor(1)
	assert.False(t, ok, "previous owner of the channel must be evicted")
	feedID, _ := m.FeedFor("shared")
	assert.Equal(t, int64(2), feedID)
	assert.Equal(t, 1, m.Len())
	assertConsistent(t, m)
}

func TestMappingSnapshotIsACopy(t *testing.T) {
	m := NewMapping()
	m.Set(1, "c1")

	snapshot := m.Snapshot()
	m.Set(2, "c2")
	snapshot[3] = "c3"

	assert.Len(t, snapshot, 2)
	assert.Equal(t, map[int64]string{1: "c1", 2: "c2"}, m.Snapshot())
}
