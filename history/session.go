package history

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Session is what one content session contributed.
type Session struct {
	AssetName  string
	StreamType string

	// Duration is the content length in seconds, zero when unknown.
	Duration int

	// Playhead is the furthest reported position in milliseconds.
	Playhead int

	Stalls int
	Errors int
	Ended  time.Time
}

// WatchedPercentage is the furthest playhead relative to the duration, capped at 100.
func (s Session) WatchedPercentage() float64 {
	if s.Duration <= 0 {
		return 0
	}

	percentage := float64(s.Playhead) / float64(s.Duration*1000) * 100
	return lo.Clamp(percentage, 0, 100)
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s : %d sessions, %.0f%%", s.AssetName, s.Sessions, s.WatchedPercentage)
}
