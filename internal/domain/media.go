// Package domain contains media entities without logic, just meta-data
package domain

import (
	"fmt"
	"strings"
)

// MediaType identifies the kind of a channel.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeAudio
	MediaTypeVideo
	// MediaTypeScreenShare is the video-based screen sharing (VBSS) feed.
	MediaTypeScreenShare
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeAudio:
		return "audio"
	case MediaTypeVideo:
		return "video"
	case MediaTypeScreenShare:
		return "vbss"
	default:
		return "unknown"
	}
}

// ParseMediaType accepts the String() form plus "screenshare" as an alias for vbss.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return MediaTypeAudio, nil
	case "video":
		return MediaTypeVideo, nil
	case "vbss", "screenshare", "screen_share":
		return MediaTypeScreenShare, nil
	default:
		return MediaTypeUnknown, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
}

// Resolution is the requested receive resolution of a video subscription.
type Resolution int

const (
	Resolution180p Resolution = iota
	Resolution240p
	Resolution360p
	Resolution540p
	Resolution720p
	Resolution1080p
)

// ResolutionHD is the 720p preset.
const ResolutionHD = Resolution720p

var resolutionNames = map[Resolution]string{
	Resolution180p:  "180p",
	Resolution240p:  "240p",
	Resolution360p:  "360p",
	Resolution540p:  "540p",
	Resolution720p:  "720p",
	Resolution1080p: "1080p",
}

func (r Resolution) String() string {
	if s, ok := resolutionNames[r]; ok {
		return s
	}
	return "unknown"
}

// Dimensions returns the 16:9 frame size for the preset.
func (r Resolution) Dimensions() (width, height int) {
	switch r {
	case Resolution180p:
		return 320, 180
	case Resolution240p:
		return 424, 240
	case Resolution360p:
		return 640, 360
	case Resolution540p:
		return 960, 540
	case Resolution720p:
		return 1280, 720
	case Resolution1080p:
		return 1920, 1080
	default:
		return 0, 0
	}
}

func (r Resolution) Valid() bool {
	_, ok := resolutionNames[r]
	return ok
}

// ParseResolution accepts "720p" style names plus the "hd" and "fullhd" aliases.
func ParseResolution(s string) (Resolution, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "hd":
		return Resolution720p, nil
	case "fullhd", "fhd":
		return Resolution1080p, nil
	}
	for r, n := range resolutionNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
}

func (m MediaType) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MediaType) UnmarshalText(b []byte) error {
	v, err := ParseMediaType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (r Resolution) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resolution) UnmarshalText(b []byte) error {
	v, err := ParseResolution(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
