package history

import (
	"errors"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/spf13/cast"
)

// Collector is a record.Sink that saves a session summary when its session ends.
type Collector struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
	save     func(Session) error
}

// NewCollector returns a collector saving through Save.
func NewCollector() *Collector {
	return &Collector{
		sessions: make(map[string]*Session),
		now:      time.Now,
		save:     Save,
	}
}

func (c *Collector) Write(r record.Record) error {
	if r.Scope != record.ScopeVideo || r.SessionID == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[r.SessionID]
	ending := r.Kind == record.KindPlaybackEnded || r.Kind == record.KindRelease

	switch {
	case !ok && ending:
		return nil
	case !ok:
		session = &Session{}
		c.sessions[r.SessionID] = session
	}

	switch r.Kind {
	case record.KindPlaybackRequested, record.KindContentInfo:
		applyInfo(session, r.Info)
	case record.KindMetric:
		applyMetric(session, r)
	case record.KindError:
		session.Errors++
	case record.KindPlaybackEnded, record.KindRelease:
		delete(c.sessions, r.SessionID)
		session.Ended = r.Time
		if session.Ended.IsZero() {
			session.Ended = c.now()
		}
		return c.save(*session)
	}

	return nil
}

// Close saves sessions that never ended.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for id, session := range c.sessions {
		delete(c.sessions, id)
		session.Ended = c.now()
		if err := c.save(*session); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func applyInfo(session *Session, info analytics.ContentInfo) {
	if name, ok := info[analytics.KeyAssetName]; ok {
		session.AssetName = cast.ToString(name)
	}

	if streamType, ok := info[analytics.KeyStreamType]; ok {
		session.StreamType = cast.ToString(streamType)
	}

	if duration, ok := info[analytics.KeyDuration]; ok {
		session.Duration = cast.ToInt(duration)
	}
}

func applyMetric(session *Session, r record.Record) {
	value, ok := r.Value()
	if !ok {
		return
	}

	switch analytics.MetricName(r.Name) {
	case analytics.MetricPlayerState:
		if value == analytics.StateBuffering {
			session.Stalls++
		}
	case analytics.MetricPlayHeadTime:
		if ms := cast.ToInt(value); ms > session.Playhead {
			session.Playhead = ms
		}
	}
}
