package core

// MediaSession exposes the channels of an established call.
// Created and owned outside the media core; the core only holds references.
type MediaSession interface {
	// AudioChannel is mandatory; nil means the session is unusable.
	AudioChannel() Channel
	// VideoChannels is ordered by socket id and may be empty.
	VideoChannels() []Channel
	// ScreenShareChannel may be nil.
	ScreenShareChannel() Channel
}
