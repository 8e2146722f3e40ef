package feedbin

import "net/http"

// Cursor holds the cache validators for the unread entries query
type Cursor struct {
	ETag         string
	LastModified string
}

// Preconditions returns the conditional request headers for the cursor
func (c Cursor) Preconditions() map[string]string {
	headers := make(map[string]string, 2)
	if c.ETag != "" {
		headers["If-None-Match"] = c.ETag
	}
	if c.LastModified != "" {
		headers["If-Modified-Since"] = c.LastModified
	}
	return headers
}

// Advance returns the cursor updated with any validators present in h.
// Absent validators keep their previous value.
func (c Cursor) Advance(h http.Header) Cursor {
	if etag := h.Get("ETag"); etag != "" {
		c.ETag = etag
	}
	if lastModified := h.Get("Last-Modified"); lastModified != "" {
		c.LastModified = lastModified
	}
	return c
}
