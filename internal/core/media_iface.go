package core

//go:generate mockgen -source=media_iface.go -destination=mocks/mock_media.go -package=mocks

import (
	"github.com/dkeye/mediabot/internal/domain"
)

// MediaBuffer is one sample owned by the call platform.
// The platform reuses the memory behind Data once Release is called,
// so Release must happen exactly once, before the delivery callback returns.
type MediaBuffer interface {
	// Data returns a view of the payload; it is only valid until Release.
	Data() ([]byte, error)
	// Length is the declared payload size in bytes.
	Length() int
	// Timestamp is the capture time in 100ns ticks.
	Timestamp() int64
	Format() domain.FormatDescriptor
	Release()
}

// BufferHandler is invoked on the platform's goroutine for every delivered buffer.
type BufferHandler func(buf MediaBuffer)

// Registration is returned by Channel.OnBuffer; Deregister detaches the handler.
// After Deregister returns the handler is not running and will not be invoked again.
type Registration interface {
	Deregister()
}

// Channel is one media endpoint of a call: the audio channel, one video socket or vbss.
type Channel interface {
	Kind() domain.MediaType
	// Index is the socket id for video channels and 0 otherwise.
	Index() uint32
	OnBuffer(BufferHandler) Registration
	Subscribe(res domain.Resolution, sourceID uint32) error
	Unsubscribe() error
	State() domain.SubscriptionState
}
