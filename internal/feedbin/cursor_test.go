package feedbin

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorPreconditions(t *testing.T) {
	assert.Empty(t, Cursor{}.Preconditions())

	headers := Cursor{ETag: "abc", LastModified: "yesterday"}.Preconditions()
	assert.Equal(t, map[string]string{
		"If-None-Match":     "abc",
		"If-Modified-Since": "yesterday",
	}, headers)
}

func TestCursorAdvanceKeepsMissingValidators(t *testing.T) {
	c := Cursor{ETag: "old", LastModified: "then"}

	h := http.Header{}
	h.Set("ETag", "new")
	c = c.Advance(h)

	assert.Equal(t, Cursor{ETag: "new", LastModified: "then"}, c)
	assert.Equal(t, c, c.Advance(http.Header{}))
}
