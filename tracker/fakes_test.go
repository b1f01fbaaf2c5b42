package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/media"
)

type call struct {
	handle string
	method string
	args   []any
}

func (c call) String() string {
	return fmt.Sprintf("%s.%s%v", c.handle, c.method, c.args)
}

type fakeSDK struct {
	mu     sync.Mutex
	calls  []call
	videos int
	video  *fakeVideo
	fail   map[string]error
	panics map[string]bool
}

func newFakeSDK() *fakeSDK {
	return &fakeSDK{
		fail:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

func (f *fakeSDK) record(handle, method string, args ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{handle: handle, method: method, args: args})
	err := f.fail[method]
	boom := f.panics[method]
	f.mu.Unlock()

	if boom {
		panic(method)
	}
	return err
}

func (f *fakeSDK) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]call(nil), f.calls...)
}

func (f *fakeSDK) count(method string) int {
	var n int
	for _, c := range f.snapshot() {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeSDK) index(method string) int {
	for i, c := range f.snapshot() {
		if c.method == method {
			return i
		}
	}
	return -1
}

func (f *fakeSDK) last(method string) (call, bool) {
	calls := f.snapshot()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].method == method {
			return calls[i], true
		}
	}
	return call{}, false
}

// metrics returns the values reported for name on a handle ("video" or "ad").
func (f *fakeSDK) metrics(handle string, name analytics.MetricName) []any {
	var values []any
	for _, c := range f.snapshot() {
		if c.handle != handle || (c.method != "ReportPlaybackMetric" && c.method != "ReportAdMetric") {
			continue
		}
		if c.args[0] == name {
			values = append(values, c.args[1:]...)
		}
	}
	return values
}

func (f *fakeSDK) states(handle string) []any {
	return f.metrics(handle, analytics.MetricPlayerState)
}

func (f *fakeSDK) NewVideoAnalytics() (analytics.VideoAnalytics, error) {
	if err := f.record("client", "NewVideoAnalytics"); err != nil {
		return nil, err
	}

	v := &fakeVideo{sdk: f}

	f.mu.Lock()
	f.videos++
	f.video = v
	f.mu.Unlock()
	return v, nil
}

func (f *fakeSDK) NewAdAnalytics(analytics.VideoAnalytics) (analytics.AdAnalytics, error) {
	if err := f.record("client", "NewAdAnalytics"); err != nil {
		return nil, err
	}
	return &fakeAd{sdk: f}, nil
}

func (f *fakeSDK) ReportAppEvent(name string, attrs map[string]string) error {
	return f.record("client", "ReportAppEvent", name, attrs)
}

func (f *fakeSDK) Release() error {
	return f.record("client", "Release")
}

type fakeVideo struct {
	sdk      *fakeSDK
	callback func()
}

func (v *fakeVideo) SetPlayerInfo(info analytics.PlayerInfo) error {
	return v.sdk.record("video", "SetPlayerInfo", info)
}

func (v *fakeVideo) SetCallback(poll func()) error {
	v.callback = poll
	return v.sdk.record("video", "SetCallback")
}

func (v *fakeVideo) ReportPlaybackRequested(info analytics.ContentInfo) error {
	return v.sdk.record("video", "ReportPlaybackRequested", info)
}

func (v *fakeVideo) SetContentInfo(info analytics.ContentInfo) error {
	return v.sdk.record("video", "SetContentInfo", info)
}

func (v *fakeVideo) ReportPlaybackMetric(name analytics.MetricName, values ...any) error {
	return v.sdk.record("video", "ReportPlaybackMetric", append([]any{name}, values...)...)
}

func (v *fakeVideo) ReportPlaybackEvent(name string, attrs map[string]string) error {
	return v.sdk.record("video", "ReportPlaybackEvent", name, attrs)
}

func (v *fakeVideo) ReportPlaybackError(message string, severity analytics.Severity) error {
	return v.sdk.record("video", "ReportPlaybackError", message, severity)
}

func (v *fakeVideo) ReportAdBreakStarted(adType analytics.AdType, adPlayer analytics.AdPlayer, attrs map[string]string) error {
	return v.sdk.record("video", "ReportAdBreakStarted", adType, adPlayer)
}

func (v *fakeVideo) ReportAdBreakEnded() error {
	return v.sdk.record("video", "ReportAdBreakEnded")
}

func (v *fakeVideo) ReportPlaybackEnded() error {
	return v.sdk.record("video", "ReportPlaybackEnded")
}

func (v *fakeVideo) Release() error {
	return v.sdk.record("video", "Release")
}

type fakeAd struct {
	sdk *fakeSDK
}

func (a *fakeAd) ReportAdStarted(info analytics.ContentInfo) error {
	return a.sdk.record("ad", "ReportAdStarted", info)
}

func (a *fakeAd) SetAdInfo(info analytics.ContentInfo) error {
	return a.sdk.record("ad", "SetAdInfo", info)
}

func (a *fakeAd) ReportAdMetric(name analytics.MetricName, values ...any) error {
	return a.sdk.record("ad", "ReportAdMetric", append([]any{name}, values...)...)
}

func (a *fakeAd) ReportAdEnded() error {
	return a.sdk.record("ad", "ReportAdEnded")
}

func (a *fakeAd) ReportAdSkipped() error {
	return a.sdk.record("ad", "ReportAdSkipped")
}

func (a *fakeAd) ReportAdFailed(message string, info analytics.ContentInfo) error {
	return a.sdk.record("ad", "ReportAdFailed", message, info)
}

func (a *fakeAd) Release() error {
	return a.sdk.record("ad", "Release")
}

type fakePlayer struct {
	media.Dispatcher

	mu        sync.Mutex
	playing   bool
	paused    bool
	stalled   bool
	live      bool
	position  float64
	duration  float64
	source    *media.Source
	audio     *media.AudioTrack
	subtitles []media.SubtitleTrack
	quality   *media.VideoQuality
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		duration: 600,
		source:   &media.Source{Title: "Big Buck Bunny", URL: "https://cdn.example/bbb.m3u8"},
	}
}

func (p *fakePlayer) set(fn func(p *fakePlayer)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakePlayer) emit(kind media.EventKind) {
	p.Emit(media.NewEvent(kind))
}

func (p *fakePlayer) CurrentTime() float64 { p.mu.Lock(); defer p.mu.Unlock(); return p.position }
func (p *fakePlayer) Duration() float64    { p.mu.Lock(); defer p.mu.Unlock(); return p.duration }
func (p *fakePlayer) IsLive() bool         { p.mu.Lock(); defer p.mu.Unlock(); return p.live }
func (p *fakePlayer) IsPlaying() bool      { p.mu.Lock(); defer p.mu.Unlock(); return p.playing }
func (p *fakePlayer) IsPaused() bool       { p.mu.Lock(); defer p.mu.Unlock(); return p.paused }
func (p *fakePlayer) IsStalled() bool      { p.mu.Lock(); defer p.mu.Unlock(); return p.stalled }
func (p *fakePlayer) PlayerType() string   { return "fake" }
func (p *fakePlayer) Version() string      { return "1.0.0" }

func (p *fakePlayer) Source() (media.Source, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		return media.Source{}, false
	}
	return *p.source, true
}

func (p *fakePlayer) AudioTrack() (media.AudioTrack, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.audio == nil {
		return media.AudioTrack{}, false
	}
	return *p.audio, true
}

func (p *fakePlayer) SubtitleTracks() []media.SubtitleTrack {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]media.SubtitleTrack(nil), p.subtitles...)
}

func (p *fakePlayer) VideoQuality() (media.VideoQuality, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quality == nil {
		return media.VideoQuality{}, false
	}
	return *p.quality, true
}

type manualTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualClock fires timers only when advanced.
type manualClock struct {
	now    time.Duration
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.now += d
	for i := 0; i < len(c.timers); i++ {
		t := c.timers[i]
		if t.stopped || t.fired || t.at > c.now {
			continue
		}
		t.fired = true
		t.fn()
	}
}
