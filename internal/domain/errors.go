package domain

import "errors"

// Construction errors.
var (
	// ErrMissingMandatoryChannel indicates the session has no audio channel.
	ErrMissingMandatoryChannel = errors.New("session has no audio channel")
)

// Subscription errors.
var (
	// ErrInvalidMediaType indicates a subscription request for a kind other than video or vbss.
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrInvalidResolution indicates an unknown resolution name.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrMissingChannel indicates the requested channel kind is not configured.
	ErrMissingChannel = errors.New("channel not configured")

	// ErrSocketNotFound indicates a video socket id outside the configured range.
	ErrSocketNotFound = errors.New("video socket not found")

	// ErrSubscriptionFailure wraps a failure raised by the channel itself.
	ErrSubscriptionFailure = errors.New("subscription failure")
)

// Delivery errors.
var (
	// ErrBufferCopy indicates the payload could not be copied out of a media buffer.
	ErrBufferCopy = errors.New("buffer copy failed")

	// ErrDisposed indicates the handler has already been torn down.
	ErrDisposed = errors.New("media handler disposed")

	// ErrNoSink indicates a flush was requested without a configured sink.
	ErrNoSink = errors.New("no sink configured")
)
