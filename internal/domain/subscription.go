package domain

// SubscriptionState is the receive state of one channel.
// The zero value means unsubscribed.
type SubscriptionState struct {
	Subscribed bool       `json:"subscribed"`
	Resolution Resolution `json:"resolution"`
	SourceID   uint32     `json:"source_id,omitempty"`
}

func Subscribed(res Resolution, sourceID uint32) SubscriptionState {
	return SubscriptionState{Subscribed: true, Resolution: res, SourceID: sourceID}
}

func (s SubscriptionState) String() string {
	if !s.Subscribed {
		return "unsubscribed"
	}
	return "subscribed(" + s.Resolution.String() + ")"
}
