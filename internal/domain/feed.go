package domain

// Feed is the upstream metadata for a subscribed source
type Feed struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	FeedURL string `json:"feed_url"`
	SiteURL string `json:"site_url"`
}

// Subscription binds a feed URL to a feed ID on the upstream account
type Subscription struct {
	ID      int64  `json:"id"`
	FeedID  int64  `json:"feed_id"`
	Title   string `json:"title"`
	FeedURL string `json:"feed_url"`
	SiteURL string `json:"site_url"`
}

// Icon is a favicon keyed by scheme-less host
type Icon struct {
	Host string `json:"host"`
	URL  string `json:"url"`
}

// Entry is one unread item returned by the upstream entries endpoint
type Entry struct {
	ID        int64        `json:"id"`
	FeedID    int64        `json:"feed_id"`
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	Author    string       `json:"author"`
	Summary   string       `json:"summary"`
	Published string       `json:"published"`
	Images    *EntryImages `json:"images"`
}

// EntryImages holds the candidate images the upstream derived for an entry
type EntryImages struct {
	OriginalURL string     `json:"original_url"`
	Size1       *ImageSize `json:"size_1"`
}

// ImageSize is a resized derivative served from the upstream CDN
type ImageSize struct {
	CDNURL string `json:"cdn_url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PreferredURL returns the derivative URL when present, else the original
func (i *EntryImages) PreferredURL() string {
	if i == nil {
		return ""
	}
	if i.Size1 != nil && i.Size1.CDNURL != "" {
		return i.Size1.CDNURL
	}
	return i.OriginalURL
}
