package domain

import (
	"errors"
	"fmt"
)

// UpstreamError carries an unexpected status returned by the feed service
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("feed service returned status %d", e.Status)
}

// NewUpstreamError creates a new upstream status error
func NewUpstreamError(status int) *UpstreamError {
	return &UpstreamError{Status: status}
}

var (
	// Subscription errors
	ErrFeedNotFound     = errors.New("feed url not found or not a valid feed")
	ErrInvalidFeedURL   = errors.New("invalid feed url format")
	ErrSubscriptionLost = errors.New("feed exists but could not fetch subscription details")
	ErrUpstreamNetwork  = errors.New("feed service unreachable")

	// Channel errors
	ErrChannelNotMapped  = errors.New("channel is not associated with any feed")
	ErrCategoryNotFound  = errors.New("feed category not found")
	ErrChannelNotCreated = errors.New("channel could not be created")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)
