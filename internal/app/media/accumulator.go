package media

import (
	"context"
	"sync"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
)

// Accumulator is the ordered, mutex-guarded store of copied audio frames.
// It grows for the lifetime of the call; nothing is evicted.
type Accumulator struct {
	// flushMu serializes flushes; mu guards the frames.
	flushMu sync.Mutex

	mu     sync.Mutex
	frames []domain.AudioFrame
	size   int
	format domain.AudioFormat
}

type FlushResult struct {
	Destination string `json:"destination"`
	Frames      int    `json:"frames"`
	Bytes       int    `json:"bytes"`
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append stores frame after every frame appended before it and returns the new total size.
func (a *Accumulator) Append(frame domain.AudioFrame) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames = append(a.frames, frame)
	a.size += len(frame.Data)
	if a.format == (domain.AudioFormat{}) {
		a.format = frame.Format
	}
	return a.size
}

// Snapshot concatenates every stored frame in arrival order.
// The sequence is left intact.
func (a *Accumulator) Snapshot() ([]byte, FlushResult, domain.AudioFormat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]byte, 0, a.size)
	for _, f := range a.frames {
		out = append(out, f.Data...)
	}
	return out, FlushResult{Frames: len(a.frames), Bytes: a.size}, a.format
}

// Flush hands the concatenated payload to sink. Flushes run one at a time, so the last
// one to finish always carries the longest sequence. Appends are not blocked by the sink;
// frames appended during the call land in the next flush.
func (a *Accumulator) Flush(ctx context.Context, sink core.Sink) (FlushResult, error) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	data, res, format := a.Snapshot()
	dest, err := sink.Write(ctx, format, data)
	if err != nil {
		return res, err
	}
	res.Destination = dest
	return res, nil
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.frames)
}

// Size is the total payload bytes held.
func (a *Accumulator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

// Frames returns a copy of the frame list. Frame payloads are shared, they are immutable.
func (a *Accumulator) Frames() []domain.AudioFrame {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AudioFrame, len(a.frames))
	copy(out, a.frames)
	return out
}

// Format reports the format of the first appended frame.
func (a *Accumulator) Format() domain.AudioFormat {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.format
}
