package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/amiyamandal-dev/feedbridge/internal/service"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
	"github.com/amiyamandal-dev/feedbridge/pkg/response"
)

const defaultPageLimit = 50

// FeedLister lists the feed channels under the reserved category
type FeedLister interface {
	List(ctx context.Context) ([]service.FeedChannel, error)
}

// PollTrigger queues an out-of-band poll cycle
type PollTrigger interface {
	Trigger(ctx context.Context) bool
}

// MappingEntry is one feed to channel pair
type MappingEntry struct {
	FeedID    int64  `json:"feed_id"`
	ChannelID string `json:"channel_id"`
}

// FeedHandler exposes the bridge state for operators
type FeedHandler struct {
	mapping *store.Mapping
	feeds   FeedLister
	poller  PollTrigger
	logger  *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(mapping *store.Mapping, feeds FeedLister, poller PollTrigger, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		mapping: mapping,
		feeds:   feeds,
		poller:  poller,
		logger:  logger.WithComponent("feed-handler"),
	}
}

// Mappings returns the current feed to channel mapping ordered by feed ID,
// paginated with ?page and ?limit
func (h *FeedHandler) Mappings(c *gin.Context) {
	parser := NewQueryParamParser(c)
	page := parser.Pagination(defaultPageLimit)
	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	snapshot := h.mapping.Snapshot()

	entries := make([]MappingEntry, 0, len(snapshot))
	for feedID, channelID := range snapshot {
		entries = append(entries, MappingEntry{FeedID: feedID, ChannelID: channelID})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FeedID < entries[j].FeedID })

	response.Success(c, Page(entries, page))
}

// List returns the feed channels as seen on the destination.
// ?q filters by a case-insensitive substring of the channel name or feed URL.
func (h *FeedHandler) List(c *gin.Context) {
	query := strings.ToLower(NewQueryParamParser(c).String("q", ""))

	feeds, err := h.feeds.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list feeds", "error", err)
		response.InternalServerError(c, "Failed to list feeds")
		return
	}

	feeds = lo.Filter(feeds, func(f service.FeedChannel, _ int) bool {
		return query == "" ||
			strings.Contains(strings.ToLower(f.Name), query) ||
			strings.Contains(strings.ToLower(f.FeedURL), query)
	})

	response.Success(c, feeds)
}

// TriggerPoll queues a poll cycle
func (h *FeedHandler) TriggerPoll(c *gin.Context) {
	if !h.poller.Trigger(c.Request.Context()) {
		response.Conflict(c, "A poll cycle is already queued or running")
		return
	}

	h.logger.Info("Poll triggered manually", "client_ip", c.ClientIP())
	response.Accepted(c, "Poll cycle queued")
}
