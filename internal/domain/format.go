package domain

// AudioFormat describes the payload of an audio buffer.
type AudioFormat struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth,omitempty"`
}

// VideoFormat describes a video or screen share buffer.
type VideoFormat struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ColorFormat string  `json:"color_format"`
	FrameRate   float64 `json:"frame_rate"`
}

// FormatDescriptor carries exactly one of Audio or Video.
type FormatDescriptor struct {
	Audio *AudioFormat
	Video *VideoFormat
}

// AudioFrame is an owned copy of one audio buffer payload.
// It is never mutated after creation.
type AudioFrame struct {
	Data      []byte
	Timestamp int64
	Format    AudioFormat
}

func (f AudioFrame) Len() int { return len(f.Data) }
