package feedbin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.feedbin.com/v2"
	DefaultPerPage = 50
	defaultTimeout = 30 * time.Second
	contentJSON    = "application/json"
)

// Options configures a Client
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	PerPage  int
}

// Client is a typed client for the Feedbin v2 API.
// It owns the feed metadata cache, the icon lookup and the conditional-fetch
// cursor for the unread entries query. None of its methods return transport or
// status failures for read paths; they log and degrade to an empty result.
type Client struct {
	http    *resty.Client
	perPage int
	logger  *logger.Logger

	mu     sync.RWMutex
	feeds  map[int64]*domain.Feed
	icons  map[string]domain.Icon
	cursor Cursor
}

// NewClient creates a Feedbin client with basic-auth credentials
func NewClient(opts Options, log *logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if log == nil {
		log = logger.Nop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetBasicAuth(opts.Username, opts.Password).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", contentJSON).
		// 302 on subscribe is a signal, not something to chase transparently
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Client{
		http:    httpClient,
		perPage: opts.PerPage,
		logger:  log.WithComponent("feedbin-client"),
		feeds:   make(map[int64]*domain.Feed),
		icons:   make(map[string]domain.Icon),
	}
}

// GetFeed returns feed metadata, from cache when possible.
// Failed lookups are not cached so later calls retry.
func (c *Client) GetFeed(ctx context.Context, feedID int64) (*domain.Feed, bool) {
	c.mu.RLock()
	feed, ok := c.feeds[feedID]
	c.mu.RUnlock()
	if ok {
		return feed, true
	}

	var out domain.Feed
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(feedID, 10)).
		ForceContentType(contentJSON).
		SetResult(&out).
		Get("/feeds/{id}.json")
	if err != nil {
		c.logger.Error("Error fetching feed", "feed_id", feedID, "error", err)
		return nil, false
	}
	if !resp.IsSuccess() {
		c.logger.Warn("Feed lookup failed", "feed_id", feedID, "status", resp.StatusCode())
		return nil, false
	}

	c.mu.Lock()
	c.feeds[feedID] = &out
	c.mu.Unlock()

	return &out, true
}

// LoadIcons fetches the icon list once and merges it into the lookup
func (c *Client) LoadIcons(ctx context.Context) {
	var icons []domain.Icon
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType(contentJSON).
		SetResult(&icons).
		Get("/icons.json")
	if err != nil {
		c.logger.Error("Error fetching icons", "error", err)
		return
	}
	if !resp.IsSuccess() {
		c.logger.Warn("Icon list request failed", "status", resp.StatusCode())
		return
	}

	c.mu.Lock()
	for _, icon := range icons {
		c.icons[icon.Host] = icon
	}
	c.mu.Unlock()

	c.logger.Info("Loaded feed icons", "count", len(icons))
}

// Icon looks up a cached icon by scheme-less host
func (c *Client) Icon(host string) (domain.Icon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	icon, ok := c.icons[host]
	return icon, ok
}

// Cursor returns the validators that will be sent with the next poll
func (c *Client) Cursor() Cursor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor
}

// FetchUnreadEntries runs the conditional unread-entries query.
// The cursor is refreshed from every response that carries validators,
// including 304 and error responses.
func (c *Client) FetchUnreadEntries(ctx context.Context) []domain.Entry {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"read":             "false",
			"include_original": "true",
			"mode":             "extended",
			"per_page":         strconv.Itoa(c.perPage),
		}).
		ForceContentType(contentJSON)

	cursor := c.Cursor()
	for k, v := range cursor.Preconditions() {
		req.SetHeader(k, v)
	}

	var entries []domain.Entry
	resp, err := req.SetResult(&entries).Get("/entries.json")
	if resp != nil && resp.RawResponse != nil {
		c.mu.Lock()
		c.cursor = c.cursor.Advance(resp.Header())
		c.mu.Unlock()
	}
	if err != nil {
		c.logger.Error("Error fetching entries", "error", err)
		return nil
	}

	switch {
	case resp.StatusCode() == http.StatusNotModified:
		c.logger.Debug("Unread entries not modified")
		return nil
	case !resp.IsSuccess():
		c.logger.Error("Feedbin API error", "status", resp.StatusCode())
		return nil
	}

	return entries
}

// AcknowledgeEntries marks the given entries as read in one request.
// A failed batch is logged and left for the next poll to pick up again.
func (c *Client) AcknowledgeEntries(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentJSON).
		SetBody(map[string][]int64{"unread_entries": ids}).
		Delete("/unread_entries.json")
	if err != nil {
		c.logger.Error("Error marking entries as read", "entry_ids", ids, "error", err)
		return fmt.Errorf("mark entries read: %w: %v", domain.ErrUpstreamNetwork, err)
	}
	if !resp.IsSuccess() {
		c.logger.Error("Failed to mark entries as read", "entry_ids", ids, "status", resp.StatusCode())
		return domain.NewUpstreamError(resp.StatusCode())
	}

	c.logger.Info("Marked entries as read", "entry_ids", ids)
	return nil
}

// Subscribe creates an upstream subscription for feedURL.
// An existing subscription (302 + Location) is fetched and returned as success.
func (c *Client) Subscribe(ctx context.Context, feedURL string) (*domain.Subscription, error) {
	var sub domain.Subscription
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentJSON).
		SetBody(map[string]string{"feed_url": feedURL}).
		ForceContentType(contentJSON).
		SetResult(&sub).
		Post("/subscriptions.json")
	if err != nil {
		c.logger.Error("Error subscribing to feed", "feed_url", feedURL, "error", err)
		return nil, fmt.Errorf("subscribe to %s: %w: %v", feedURL, domain.ErrUpstreamNetwork, err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusOK:
		c.logger.Info("Subscribed to feed", "feed_url", feedURL, "feed_id", sub.FeedID)
		return &sub, nil
	case http.StatusFound:
		return c.existingSubscription(ctx, feedURL, resp.Header().Get("Location"))
	case http.StatusNotFound:
		return nil, domain.ErrFeedNotFound
	case http.StatusUnprocessableEntity:
		return nil, domain.ErrInvalidFeedURL
	default:
		c.logger.Error("Feedbin API error on subscribe", "feed_url", feedURL, "status", resp.StatusCode())
		return nil, domain.NewUpstreamError(resp.StatusCode())
	}
}

func (c *Client) existingSubscription(ctx context.Context, feedURL, location string) (*domain.Subscription, error) {
	if location == "" {
		return nil, domain.ErrSubscriptionLost
	}

	var sub domain.Subscription
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType(contentJSON).
		SetResult(&sub).
		Get(location)
	if err != nil {
		c.logger.Error("Error fetching existing subscription", "location", location, "error", err)
		return nil, errors.Join(domain.ErrSubscriptionLost, err)
	}
	if !resp.IsSuccess() {
		c.logger.Warn("Existing subscription lookup failed", "location", location, "status", resp.StatusCode())
		return nil, domain.ErrSubscriptionLost
	}

	c.logger.Debug("Feed already subscribed", "feed_url", feedURL, "feed_id", sub.FeedID)
	return &sub, nil
}

// ListSubscriptions returns every upstream subscription, or nil on failure
func (c *Client) ListSubscriptions(ctx context.Context) []domain.Subscription {
	var subs []domain.Subscription
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType(contentJSON).
		SetResult(&subs).
		Get("/subscriptions.json")
	if err != nil {
		c.logger.Error("Error fetching subscriptions", "error", err)
		return nil
	}
	if !resp.IsSuccess() {
		c.logger.Warn("Subscription list request failed", "status", resp.StatusCode())
		return nil
	}
	return subs
}

// FindSubscriptionByURL scans the subscription list for an exact feed URL match
func (c *Client) FindSubscriptionByURL(ctx context.Context, feedURL string) (*domain.Subscription, bool) {
	for _, sub := range c.ListSubscriptions(ctx) {
		if sub.FeedURL == feedURL {
			return &sub, true
		}
	}
	return nil, false
}
