package domain

import "strings"

// TopicPrefix marks a channel topic that embeds the feed URL it mirrors
const TopicPrefix = "RSS feed: "

// ChannelKind distinguishes the destination channel types the bridge cares about
type ChannelKind int

const (
	ChannelOther ChannelKind = iota
	ChannelText
	ChannelCategory
)

// Channel is the destination view of a guild channel
type Channel struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     ChannelKind `json:"kind"`
	ParentID string      `json:"parent_id,omitempty"`
	Topic    string      `json:"topic,omitempty"`
}

// ChannelSpec describes a channel to create
type ChannelSpec struct {
	Name     string
	Kind     ChannelKind
	ParentID string
	Topic    string
}

// FeedTopic renders the topic for a channel mirroring feedURL
func FeedTopic(feedURL string) string {
	return TopicPrefix + feedURL
}

// ParseFeedTopic extracts the feed URL from a channel topic
func ParseFeedTopic(topic string) (string, bool) {
	if !strings.HasPrefix(topic, TopicPrefix) {
		return "", false
	}
	url := topic[len(TopicPrefix):]
	if url == "" || strings.ContainsAny(url, "\r\n") {
		return "", false
	}
	return url, true
}
