package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/internal/metrics"
	"github.com/amiyamandal-dev/feedbridge/internal/render"
	"github.com/amiyamandal-dev/feedbridge/internal/repository"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// FeedGroup holds the entries of one feed in upstream order
type FeedGroup struct {
	FeedID  int64
	Entries []domain.Entry
}

// GroupByFeed partitions entries by feed. Groups appear in order of each
// feed's first entry and keep upstream order inside.
func GroupByFeed(entries []domain.Entry) []FeedGroup {
	byFeed := lo.GroupBy(entries, func(e domain.Entry) int64 { return e.FeedID })
	order := lo.Uniq(lo.Map(entries, func(e domain.Entry, _ int) int64 { return e.FeedID }))

	return lo.Map(order, func(feedID int64, _ int) FeedGroup {
		return FeedGroup{FeedID: feedID, Entries: byFeed[feedID]}
	})
}

// CycleReport summarizes one poll cycle
type CycleReport struct {
	ID           string
	Fetched      int
	Delivered    []int64
	Failed       []int64
	SkippedFeeds []int64
	Acknowledged bool
}

// DefaultPollInterval is used when NewPoller is given a non-positive interval
const DefaultPollInterval = 120 * time.Second

// Poller periodically forwards unread entries to their feed channels
type Poller struct {
	feeds      repository.FeedSource
	channels   repository.ChannelRepository
	provision  *ChannelProvisioner
	mapping    *store.Mapping
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *logger.Logger

	inFlight atomic.Bool
}

// NewPoller creates a new poller
func NewPoller(
	feeds repository.FeedSource,
	channels repository.ChannelRepository,
	provision *ChannelProvisioner,
	mapping *store.Mapping,
	dispatcher *Dispatcher,
	interval time.Duration,
	logger *logger.Logger,
) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		feeds:      feeds,
		channels:   channels,
		provision:  provision,
		mapping:    mapping,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger.WithComponent("poller"),
	}
}

// Start runs a cycle immediately and then on every tick until ctx ends.
// Ticks that arrive while a cycle is queued or running are skipped.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting polling", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Trigger(ctx)

	for {
		select {
		case <-ticker.C:
			p.Trigger(ctx)
		case <-ctx.Done():
			p.logger.Info("Context cancelled, stopping poller")
			return
		}
	}
}

// Trigger queues a cycle on the dispatcher unless one is already queued or
// running. It reports whether a cycle was queued.
func (p *Poller) Trigger(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollCycles.WithLabelValues("skipped").Inc()
		p.logger.Debug("Previous cycle still running, skipping tick")
		return false
	}

	err := p.dispatcher.Submit(ctx, "poll", func(ctx context.Context) {
		defer p.inFlight.Store(false)
		p.RunCycle(ctx)
	})
	if err != nil {
		p.inFlight.Store(false)
		return false
	}
	return true
}

// RunCycle fetches unread entries, delivers them grouped by feed and
// acknowledges the ones that were sent
func (p *Poller) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{ID: uuid.New().String()}
	log := p.logger.With("cycle_id", report.ID)
	start := time.Now()

	entries := p.feeds.FetchUnreadEntries(ctx)
	report.Fetched = len(entries)
	if len(entries) == 0 {
		metrics.PollCycles.WithLabelValues("empty").Inc()
		return report
	}

	metrics.EntriesFetched.Add(float64(len(entries)))
	log.Info("Found unread entries", "count", len(entries))

	for _, group := range GroupByFeed(entries) {
		channelID, ok := p.resolveChannel(ctx, log, group.FeedID)
		if !ok {
			report.SkippedFeeds = append(report.SkippedFeeds, group.FeedID)
			continue
		}

		feed, _ := p.feeds.GetFeed(ctx, group.FeedID)
		for _, entry := range group.Entries {
			n := render.Entry(entry, feed, p.feeds)
			if err := p.channels.Send(ctx, channelID, n); err != nil {
				log.Error("Failed to post entry",
					"entry_id", entry.ID,
					"channel_id", channelID,
					"error", err,
				)
				report.Failed = append(report.Failed, entry.ID)
				continue
			}
			report.Delivered = append(report.Delivered, entry.ID)
			log.Debug("Posted entry", "entry_id", entry.ID, "title", entry.Title, "channel_id", channelID)
		}
	}

	metrics.EntriesDelivered.Add(float64(len(report.Delivered)))
	metrics.EntriesFailed.Add(float64(len(report.Failed)))

	if len(report.Delivered) > 0 {
		if err := p.feeds.AcknowledgeEntries(ctx, report.Delivered); err != nil {
			metrics.AckFailures.Inc()
		} else {
			report.Acknowledged = true
		}
	}

	metrics.PollCycles.WithLabelValues("delivered").Inc()
	metrics.PollDuration.Observe(time.Since(start).Seconds())
	log.Info("Poll cycle complete",
		"delivered", len(report.Delivered),
		"failed", len(report.Failed),
		"skipped_feeds", len(report.SkippedFeeds),
	)
	return report
}

// resolveChannel returns the mapped channel for feedID, creating and mapping
// a new one when none exists
func (p *Poller) resolveChannel(ctx context.Context, log *logger.Logger, feedID int64) (string, bool) {
	if channelID, ok := p.mapping.ChannelFor(feedID); ok {
		return channelID, true
	}

	feed, ok := p.feeds.GetFeed(ctx, feedID)
	if !ok {
		log.Error("Could not get feed info", "feed_id", feedID)
		return "", false
	}

	channel, err := p.provision.CreateFeedChannel(ctx, feed.Title, feed.FeedURL)
	if err != nil {
		log.Error("Error creating channel for feed", "feed_id", feedID, "error", err)
		return "", false
	}

	p.mapping.Set(feedID, channel.ID)
	metrics.MappedFeeds.Set(float64(p.mapping.Len()))
	log.Info("Created channel for feed", "feed_id", feedID, "channel", channel.Name)
	return channel.ID, true
}
