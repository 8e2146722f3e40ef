package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbridge_poll_cycles_total",
		Help: "Poll cycles by outcome (empty, delivered, skipped)",
	}, []string{"outcome"})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedbridge_poll_cycle_duration_seconds",
		Help:    "Duration of completed poll cycles",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	EntriesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbridge_entries_fetched_total",
		Help: "Unread entries returned by the upstream service",
	})

	EntriesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbridge_entries_delivered_total",
		Help: "Entries successfully sent to their channel",
	})

	EntriesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbridge_entries_failed_total",
		Help: "Entries that could not be delivered and stay unread",
	})

	AckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbridge_ack_failures_total",
		Help: "Mark-as-read batches rejected or not sent",
	})

	ChannelsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedbridge_channels_created_total",
		Help: "Feed channels created on demand",
	})

	MappedFeeds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedbridge_mapped_feeds",
		Help: "Current number of feed to channel mappings",
	})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbridge_commands_total",
		Help: "Slash commands handled by subcommand and result",
	}, []string{"command", "result"})
)
