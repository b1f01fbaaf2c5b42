// Package tracker turns a player's playback lifecycle into analytics sessions.
//
// A Tracker owns at most one content session and its ad companion at a time. Player events,
// the SDK playhead callback, the stall timer and calls from the embedding application are
// serialized on one lock, so every entry point observes a consistent state.
package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/sirupsen/logrus"
)

// Options configures a Tracker.
type Options struct {
	// StallGrace defaults to DefaultStallGrace.
	StallGrace time.Duration

	// Debug enables verbose logging of every analytics call failure and ignored event.
	Debug bool

	// Scheduler defaults to WallClock.
	Scheduler Scheduler

	// Logger defaults to the tracker log component.
	Logger *logrus.Entry
}

// Tracker is the session lifecycle state machine.
type Tracker struct {
	mu sync.Mutex

	client  analytics.Client
	options Options
	logger  *logrus.Entry

	player  Player
	subs    *subscriptions
	builder *metadata.Builder
	stall   *stallTimer

	video analytics.VideoAnalytics
	ad    analytics.AdAnalytics

	adBreak                adBreakState
	hasPlayed              bool
	sessionEndedExternally bool
	pendingUpdate          bool
	lastContentState       analytics.PlayerState
	released               bool
}

// New creates a tracker reporting through client.
func New(client analytics.Client, options Options) *Tracker {
	if options.StallGrace <= 0 {
		options.StallGrace = DefaultStallGrace
	}

	if options.Scheduler == nil {
		options.Scheduler = WallClock
	}

	if options.Logger == nil {
		options.Logger = log.Component("tracker")
	}

	t := &Tracker{
		client:  client,
		options: options,
		logger:  options.Logger,
		builder: metadata.NewBuilder(),
	}

	t.stall = newStallTimer(options.Scheduler, options.StallGrace, t.onStallExpired)
	t.builder.Tag(analytics.TagIntegrationVersion, constant.IntegrationVersion)

	return t
}

// AttachPlayer subscribes to every event kind of p. A previously attached player is detached.
func (t *Tracker) AttachPlayer(p Player) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}

	t.detach()

	t.player = p
	t.subs = newSubscriptions(p)
	for _, kind := range media.Kinds() {
		t.subs.subscribe(kind, t.handle)
	}

	t.builder.Tag(analytics.TagPlayerType, p.PlayerType())
	t.derive()

	t.debugf("attached %s %s", p.PlayerType(), p.Version())
	return nil
}

func (t *Tracker) detach() {
	if t.subs != nil {
		t.subs.clear()
		t.subs = nil
	}
	t.player = nil
}

// Release ends any session, detaches the player and releases the client.
// Every later call is a no-op or returns ErrReleased.
func (t *Tracker) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}

	t.endSession()
	t.detach()
	t.call("release client", t.client.Release)
	t.released = true
}

// InitializeSession opens a session explicitly. It warns and does nothing when one is active.
// It fails when no asset name can be resolved.
func (t *Tracker) InitializeSession() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}

	if t.video != nil {
		t.logger.Warn("a session is already active, ignoring initialize")
		return nil
	}

	t.sessionEndedExternally = false
	return t.initializeSession()
}

// EndSession closes the active session and suppresses automatic session creation
// until InitializeSession is called again.
func (t *Tracker) EndSession() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil {
		return
	}

	t.endSession()
	t.sessionEndedExternally = true
}

// IsSessionActive reports whether a content session exists.
func (t *Tracker) IsSessionActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.video != nil
}

// IsAdBreakActive reports whether any ad break, including paused tracking, is active.
func (t *Tracker) IsAdBreakActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.adBreak.active
}

// UpdateContentMetadata merges overrides. With an active session the update is pushed
// right away, or at the end of the current ad break. Without one it applies to the next session.
func (t *Tracker) UpdateContentMetadata(o metadata.Overrides) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.builder.SetOverrides(o)

	if t.video == nil {
		return
	}

	if t.adBreak.active {
		t.pendingUpdate = true
		return
	}

	t.derive()
	t.pushContentInfo()
}

// ResetContentMetadata drops every override and custom tag. The integration tags are kept.
// An active session receives the derived values at once, or at the end of the current ad break.
func (t *Tracker) ResetContentMetadata() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.builder.Reset()
	t.builder.Tag(analytics.TagIntegrationVersion, constant.IntegrationVersion)
	if t.player != nil {
		t.builder.Tag(analytics.TagPlayerType, t.player.PlayerType())
	}

	if t.video == nil {
		return
	}

	if t.adBreak.active {
		t.pendingUpdate = true
		return
	}

	t.derive()
	t.pushContentInfo()
}

// ContentMetadata returns the metadata the next report would carry.
func (t *Tracker) ContentMetadata() metadata.ContentMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.derive()
	return t.builder.Build()
}

// SendCustomApplicationEvent reports an event outside of any session.
func (t *Tracker) SendCustomApplicationEvent(name string, attrs map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}

	t.call("application event "+name, func() error {
		return t.client.ReportAppEvent(name, attrs)
	})
}

// SendCustomPlaybackEvent reports an event into the active session.
func (t *Tracker) SendCustomPlaybackEvent(name string, attrs map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil {
		t.logger.Warnf("no active session, dropping playback event %q", name)
		return
	}

	t.playbackEvent(name, attrs)
}

func (t *Tracker) playbackEvent(name string, attrs map[string]string) {
	t.call("playback event "+name, func() error {
		return t.video.ReportPlaybackEvent(name, attrs)
	})
}

// ReportPlaybackDeficiency reports an error into the active session and optionally ends it.
func (t *Tracker) ReportPlaybackDeficiency(message string, severity analytics.Severity, endSession bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil {
		t.logger.Warnf("no active session, dropping deficiency %q", message)
		return
	}

	t.call(fmt.Sprintf("playback error (%s)", severity), func() error {
		return t.video.ReportPlaybackError(message, severity)
	})

	if endSession {
		t.endSession()
	}
}

// PauseTracking stops monitoring by entering a synthetic client-side ad break.
func (t *Tracker) PauseTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil {
		t.logger.Warn("no active session, nothing to pause")
		return
	}

	if t.adBreak.active {
		t.logger.Warn("an ad break is active, tracking cannot be paused")
		return
	}

	t.startAdBreak(ClientSide, nil)
	t.adBreak.pausedTracking = true
}

// ResumeTracking leaves the break entered by PauseTracking.
func (t *Tracker) ResumeTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.adBreak.pausedTracking {
		t.logger.Warn("tracking is not paused")
		return
	}

	t.finishAdBreak()
}

// SSAI returns the server-side ad insertion reporter bound to this tracker.
func (t *Tracker) SSAI() *SSAI {
	return &SSAI{t: t}
}
