package media

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
)

// Handle wraps a platform-owned buffer and releases it exactly once.
// Callers acquire it at the top of a delivery callback and defer Release.
type Handle struct {
	buf      core.MediaBuffer
	once     sync.Once
	released atomic.Bool
	// consumed is set once the payload has been stored.
	consumed atomic.Bool
}

func Acquire(buf core.MediaBuffer) *Handle {
	return &Handle{buf: buf}
}

// Release hands the buffer back to the platform. Extra calls are no-ops.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.released.Store(true)
		if h.buf != nil {
			h.buf.Release()
		}
	})
}

func (h *Handle) Released() bool { return h.released.Load() }

func (h *Handle) Buffer() core.MediaBuffer { return h.buf }

func (h *Handle) markConsumed()  { h.consumed.Store(true) }
func (h *Handle) Consumed() bool { return h.consumed.Load() }

// CopyPayload allocates an owned slice of the declared length and copies the payload into it.
// maxBytes <= 0 disables the size check.
func (h *Handle) CopyPayload(maxBytes int) ([]byte, error) {
	if h.Released() {
		return nil, fmt.Errorf("%w: buffer already released", domain.ErrBufferCopy)
	}
	if h.buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", domain.ErrBufferCopy)
	}
	n := h.buf.Length()
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", domain.ErrBufferCopy, n)
	}
	if maxBytes > 0 && n > maxBytes {
		return nil, fmt.Errorf("%w: length %d exceeds limit %d", domain.ErrBufferCopy, n, maxBytes)
	}
	src, err := h.buf.Data()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBufferCopy, err)
	}
	if len(src) < n {
		return nil, fmt.Errorf("%w: short payload %d of %d bytes", domain.ErrBufferCopy, len(src), n)
	}
	out := make([]byte, n)
	copy(out, src[:n])
	return out, nil
}
