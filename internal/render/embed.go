package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
)

// Rune limits for each bounded field of a notification
const (
	MaxTitleRunes       = 256
	MaxDescriptionRunes = 500
	MaxAuthorRunes      = 256
	MaxFooterRunes      = 2048

	// Color is the accent used for every notification
	Color = 0x5865F2
)

// IconLookup resolves a scheme-less host to a cached feed icon
type IconLookup interface {
	Icon(host string) (domain.Icon, bool)
}

var (
	strict = bluemonday.StrictPolicy()

	// markup matches a common HTML element tag whose attributes, if any,
	// carry values, so "a<b" or "Map<T>" stay plain text
	markup = regexp.MustCompile(`(?i)</?(p|br|hr|a|b|i|u|s|em|strong|small|sub|sup|div|span|img|figure|figcaption|ul|ol|li|h[1-6]|blockquote|q|code|pre|table|thead|tbody|tr|td|th|iframe|video|source)(\s+[a-z-]+=("[^"]*"|'[^']*'|[^\s>]+))*\s*/?>`)
)

// Entry builds the notification payload for one entry.
// feed may be nil when its metadata could not be fetched.
func Entry(entry domain.Entry, feed *domain.Feed, icons IconLookup) domain.Notification {
	n := domain.Notification{
		Title:       truncate(entry.Title, MaxTitleRunes),
		URL:         entry.URL,
		Description: Summary(entry.Summary),
		Timestamp:   entry.Published,
		Color:       Color,
		ImageURL:    entry.Images.PreferredURL(),
	}

	if feed != nil {
		n.Author.Name = truncate(feed.Title, MaxAuthorRunes)
		n.Author.URL = feed.SiteURL
	}
	if n.Author.Name == "" {
		n.Author.Name = fmt.Sprintf("Feed %d", entry.FeedID)
	}
	if feed != nil && icons != nil {
		if icon, ok := lookupIcon(icons, feed.SiteURL); ok {
			n.Author.IconURL = icon.URL
		}
	}

	if entry.Author != "" {
		n.Footer = &domain.NotificationFooter{Text: truncate(entry.Author, MaxFooterRunes)}
	}

	return n
}

// Summary bounds a summary to MaxDescriptionRunes. Plain text is kept
// verbatim; a summary carrying HTML tags is reduced to plain text first.
func Summary(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if !markup.MatchString(raw) {
		return truncate(raw, MaxDescriptionRunes)
	}
	text := html.UnescapeString(strict.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, MaxDescriptionRunes)
}

// lookupIcon tries the scheme-stripped site URL, then without a trailing
// slash, then the bare host.
func lookupIcon(icons IconLookup, siteURL string) (domain.Icon, bool) {
	key := strings.TrimPrefix(strings.TrimPrefix(siteURL, "https://"), "http://")
	if key == "" {
		return domain.Icon{}, false
	}

	candidates := []string{key, strings.TrimRight(key, "/")}
	if i := strings.IndexByte(key, '/'); i > 0 {
		candidates = append(candidates, key[:i])
	}

	for _, host := range candidates {
		if icon, ok := icons.Icon(host); ok {
			return icon, true
		}
	}
	return domain.Icon{}, false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
