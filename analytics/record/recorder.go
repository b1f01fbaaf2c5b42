package record

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ErrReleased is returned by handles used after Release.
var ErrReleased = errors.New("analytics handle released")

// Options configures a Recorder.
type Options struct {
	// PollInterval is how often the playhead callback of a video session is invoked.
	// Zero disables polling.
	PollInterval time.Duration

	// Now is the clock used to stamp records.
	Now func() time.Time
}

// Recorder is an analytics.Client writing to a Sink.
type Recorder struct {
	sink    Sink
	options Options

	mu       sync.Mutex
	sessions map[string]*Video
	released bool
}

// New creates a recorder over the sink.
func New(sink Sink, options Options) *Recorder {
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Recorder{
		sink:     sink,
		options:  options,
		sessions: make(map[string]*Video),
	}
}

func (r *Recorder) emit(rec Record) error {
	rec.ID = uuid.NewString()
	rec.Time = r.options.Now()
	return r.sink.Write(rec)
}

// NewVideoAnalytics implements analytics.Client.
func (r *Recorder) NewVideoAnalytics() (analytics.VideoAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return nil, ErrReleased
	}

	v := &Video{
		recorder: r,
		id:       uuid.NewString(),
	}
	r.sessions[v.id] = v
	return v, nil
}

// NewAdAnalytics implements analytics.Client.
func (r *Recorder) NewAdAnalytics(video analytics.VideoAnalytics) (analytics.AdAnalytics, error) {
	v, ok := video.(*Video)
	if !ok {
		return nil, fmt.Errorf("ad analytics: unsupported video handle %T", video)
	}

	if v.isReleased() {
		return nil, ErrReleased
	}

	return &Ad{video: v}, nil
}

// ReportAppEvent implements analytics.Client.
func (r *Recorder) ReportAppEvent(name string, attrs map[string]string) error {
	return r.emit(Record{
		Scope: ScopeApp,
		Kind:  KindAppEvent,
		Name:  name,
		Attrs: lo.Assign(attrs),
	})
}

// Sessions returns the number of open video sessions.
func (r *Recorder) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Release closes every open session and the sink.
func (r *Recorder) Release() error {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return nil
	}
	r.released = true
	open := lo.Values(r.sessions)
	r.mu.Unlock()

	var errs []error
	for _, v := range open {
		if err := v.Release(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := r.sink.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (r *Recorder) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// Video is a content session handle.
type Video struct {
	recorder *Recorder
	id       string

	mu       sync.Mutex
	released bool
	poll     func()
	cancel   context.CancelFunc
}

// ID returns the session id stamped on every record of this session.
func (v *Video) ID() string {
	return v.id
}

func (v *Video) isReleased() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.released
}

func (v *Video) emit(rec Record) error {
	if v.isReleased() {
		return ErrReleased
	}

	rec.SessionID = v.id
	if rec.Scope == "" {
		rec.Scope = ScopeVideo
	}

	return v.recorder.emit(rec)
}

func (v *Video) SetPlayerInfo(info analytics.PlayerInfo) error {
	return v.emit(Record{
		Kind: KindPlayerInfo,
		Attrs: map[string]string{
			"frameworkName":    info.FrameworkName,
			"frameworkVersion": info.FrameworkVersion,
		},
	})
}

// SetCallback stores the playhead callback and starts polling it when polling is enabled.
func (v *Video) SetCallback(poll func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.released {
		return ErrReleased
	}

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	v.poll = poll
	interval := v.recorder.options.PollInterval
	if poll == nil || interval <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	return nil
}

// Poll invokes the playhead callback once.
func (v *Video) Poll() {
	v.mu.Lock()
	poll := v.poll
	released := v.released
	v.mu.Unlock()

	if poll != nil && !released {
		poll()
	}
}

func (v *Video) ReportPlaybackRequested(info analytics.ContentInfo) error {
	return v.emit(Record{Kind: KindPlaybackRequested, Info: info.Clone()})
}

func (v *Video) SetContentInfo(info analytics.ContentInfo) error {
	return v.emit(Record{Kind: KindContentInfo, Info: info.Clone()})
}

func (v *Video) ReportPlaybackMetric(name analytics.MetricName, values ...any) error {
	return v.emit(Record{Kind: KindMetric, Name: string(name), Values: values})
}

func (v *Video) ReportPlaybackEvent(name string, attrs map[string]string) error {
	return v.emit(Record{Kind: KindEvent, Name: name, Attrs: lo.Assign(attrs)})
}

func (v *Video) ReportPlaybackError(message string, severity analytics.Severity) error {
	return v.emit(Record{Kind: KindError, Name: message, Values: []any{string(severity)}})
}

func (v *Video) ReportAdBreakStarted(adType analytics.AdType, adPlayer analytics.AdPlayer, attrs map[string]string) error {
	return v.emit(Record{
		Kind:   KindAdBreakStarted,
		Values: []any{string(adType), string(adPlayer)},
		Attrs:  lo.Assign(attrs),
	})
}

func (v *Video) ReportAdBreakEnded() error {
	return v.emit(Record{Kind: KindAdBreakEnded})
}

func (v *Video) ReportPlaybackEnded() error {
	return v.emit(Record{Kind: KindPlaybackEnded})
}

// Release stops polling and closes the session. Releasing twice is a no-op.
func (v *Video) Release() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return nil
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.poll = nil
	v.mu.Unlock()

	err := v.emit(Record{Kind: KindRelease})

	v.mu.Lock()
	v.released = true
	v.mu.Unlock()

	v.recorder.forget(v.id)
	return err
}

// Ad is the ad companion of a Video session. Its records share the session id.
type Ad struct {
	video *Video

	mu       sync.Mutex
	released bool
}

func (a *Ad) emit(rec Record) error {
	a.mu.Lock()
	released := a.released
	a.mu.Unlock()

	if released {
		return ErrReleased
	}

	rec.Scope = ScopeAd
	return a.video.emit(rec)
}

func (a *Ad) ReportAdStarted(info analytics.ContentInfo) error {
	return a.emit(Record{Kind: KindAdStarted, Info: info.Clone()})
}

func (a *Ad) SetAdInfo(info analytics.ContentInfo) error {
	return a.emit(Record{Kind: KindAdInfo, Info: info.Clone()})
}

func (a *Ad) ReportAdMetric(name analytics.MetricName, values ...any) error {
	return a.emit(Record{Kind: KindMetric, Name: string(name), Values: values})
}

func (a *Ad) ReportAdEnded() error {
	return a.emit(Record{Kind: KindAdEnded})
}

func (a *Ad) ReportAdSkipped() error {
	return a.emit(Record{Kind: KindAdSkipped})
}

func (a *Ad) ReportAdFailed(message string, info analytics.ContentInfo) error {
	return a.emit(Record{Kind: KindAdFailed, Name: message, Info: info.Clone()})
}

func (a *Ad) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.released = true
	return nil
}
