package domain

// trendDeadband is the BPM distance from the rolling average inside which
// the trend reads as steady. Keeps the label from flapping on noise.
const trendDeadband = 3

// Trend labels shown on the glance surface.
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendSteady  = "Steady"
)

// StreamStatus carries the transport-level flags accompanying a reading.
type StreamStatus struct {
	IsSharing bool
	IsViewing bool
	HasError  bool
}

// HeartRateSnapshot is one fully assembled observation from the reading
// pipeline. Rolling statistics are nil until enough readings are in the
// window.
type HeartRateSnapshot struct {
	BPM     int
	Average *int
	Maximum *int
	Minimum *int

	IsSharing bool
	IsViewing bool
	HasError  bool
}

// ContentState is the renderable payload pushed to the glance surface.
// The three status flags are always emitted; older payloads that omit them
// decode to false. The optional statistics stay absent from the wire when
// the window has not produced them yet.
type ContentState struct {
	BPM     int  `json:"bpm"`
	Average *int `json:"average,omitempty"`
	Maximum *int `json:"maximum,omitempty"`
	Minimum *int `json:"minimum,omitempty"`

	IsSharing bool `json:"isSharing"`
	IsViewing bool `json:"isViewing"`
	HasError  bool `json:"hasError"`
}

// NewContentState maps a snapshot onto the wire payload.
func NewContentState(s HeartRateSnapshot) ContentState {
	return ContentState{
		BPM:       s.BPM,
		Average:   s.Average,
		Maximum:   s.Maximum,
		Minimum:   s.Minimum,
		IsSharing: s.IsSharing,
		IsViewing: s.IsViewing,
		HasError:  s.HasError,
	}
}

// TrendDescription derives the display trend from the current BPM and the
// rolling average. It is computed, never serialized, and empty while the
// average is absent.
func (c ContentState) TrendDescription() string {
	if c.Average == nil {
		return ""
	}
	switch {
	case c.BPM > *c.Average+trendDeadband:
		return TrendRising
	case c.BPM < *c.Average-trendDeadband:
		return TrendFalling
	default:
		return TrendSteady
	}
}
