package player

import (
	"testing"

	"github.com/anisan-cli/playtrack/media"
	. "github.com/smartystreets/goconvey/convey"
)

func record(o *Observer) *[]media.EventKind {
	var kinds []media.EventKind
	for _, kind := range media.Kinds() {
		o.Subscribe(kind, func(ev media.Event) {
			kinds = append(kinds, ev.Kind)
		})
	}
	return &kinds
}

func TestObserver(t *testing.T) {
	Convey("Given an observer of a loaded file", t, func() {
		o := NewObserver(media.Source{Title: "Sintel", URL: "https://cdn.example/sintel.m3u8"}, "mpv 0.38.0")
		kinds := record(o)

		o.Handle("duration", 888.0)
		o.Handle("file-loaded", nil)
		o.Handle("playback-restart", nil)

		Convey("Then the start maps to sourceloaded, play and playing", func() {
			So(*kinds, ShouldResemble, []media.EventKind{media.EventSourceLoaded, media.EventPlay, media.EventPlaying})
			So(o.IsPlaying(), ShouldBeTrue)
			So(o.IsLive(), ShouldBeFalse)

			source, ok := o.Source()
			So(ok, ShouldBeTrue)
			So(source.Title, ShouldEqual, "Sintel")
		})

		Convey("When pause toggles", func() {
			o.Handle("pause", true)
			paused := o.IsPaused()
			o.Handle("pause", true)
			o.Handle("pause", false)

			Convey("Then paused, play and playing are emitted once each", func() {
				So(paused, ShouldBeTrue)
				So((*kinds)[3:], ShouldResemble, []media.EventKind{media.EventPaused, media.EventPlay, media.EventPlaying})
			})
		})

		Convey("When the player seeks and waits for cache", func() {
			o.Handle("time-pos", 42.0)
			o.Handle("seeking", true)
			stalled := o.IsStalled()
			o.Handle("seeking", false)
			o.Handle("paused-for-cache", true)
			o.Handle("paused-for-cache", false)

			Convey("Then seek, seeked and stall events follow", func() {
				So(stalled, ShouldBeTrue)
				So((*kinds)[3:], ShouldResemble, []media.EventKind{
					media.EventSeek, media.EventSeeked, media.EventStallStarted, media.EventStallEnded,
				})
				So(o.CurrentTime(), ShouldEqual, 42.0)
			})
		})

		Convey("When a seek starts before the new position is known", func() {
			var target float64
			o.Subscribe(media.EventSeek, func(ev media.Event) { target = ev.SeekTarget })

			o.Handle("time-pos", 42.0)
			o.Handle("seeking", true)
			armed := len(*kinds)
			o.Handle("time-pos", 120.0)
			o.Handle("time-pos", 120.5)
			o.Handle("seeking", false)

			Convey("Then the seek carries the position mpv jumped to", func() {
				So(armed, ShouldEqual, 3)
				So((*kinds)[3:], ShouldResemble, []media.EventKind{media.EventSeek, media.EventSeeked})
				So(target, ShouldEqual, 120.0)
			})
		})

		Convey("When tracks and video parameters change", func() {
			o.Handle("current-tracks/audio", map[string]interface{}{"id": 1.0, "lang": "eng"})
			o.Handle("current-tracks/sub", map[string]interface{}{"id": 2.0, "lang": "eng", "hearing-impaired": true})
			o.Handle("current-tracks/sub", nil)
			o.Handle("estimated-vf-fps", 23.976)
			o.Handle("video-params", map[string]interface{}{"w": 1920.0, "h": 800.0})
			o.Handle("video-bitrate", 4200000.0)

			Convey("Then the matching events are emitted and the state is cached", func() {
				So((*kinds)[3:], ShouldResemble, []media.EventKind{
					media.EventAudioChanged,
					media.EventSubtitleEnabled,
					media.EventSubtitleDisabled,
					media.EventVideoQualityChanged,
					media.EventVideoQualityChanged,
				})

				audio, ok := o.AudioTrack()
				So(ok, ShouldBeTrue)
				So(audio.Language, ShouldEqual, "eng")
				So(o.SubtitleTracks(), ShouldBeEmpty)

				q, ok := o.VideoQuality()
				So(ok, ShouldBeTrue)
				So(q, ShouldResemble, media.VideoQuality{Bitrate: 4200000, Width: 1920, Height: 800, FrameRate: 23.976})
			})
		})

		Convey("When the file ends", func() {
			o.Handle("eof-reached", true)
			o.Handle("end-file", map[string]interface{}{"reason": "eof"})
			o.Handle("shutdown", nil)

			Convey("Then playback finishes once and the player is destroyed", func() {
				So((*kinds)[3:], ShouldResemble, []media.EventKind{media.EventPlaybackFinished, media.EventDestroy})
				So(o.Loaded(), ShouldBeFalse)

				source, ok := o.Source()
				So(ok, ShouldBeTrue)
				So(source.Title, ShouldEqual, "Sintel")
			})
		})

		Convey("When the file fails", func() {
			var failure *media.PlayerError
			o.Subscribe(media.EventError, func(ev media.Event) { failure = ev.Error })
			o.Handle("end-file", map[string]interface{}{"reason": "error", "file_error": "loading failed"})

			Convey("Then an error event carries the reason", func() {
				So(failure, ShouldNotBeNil)
				So(failure.Message, ShouldEqual, "loading failed")
			})
		})

		Convey("When the file is stopped", func() {
			o.Handle("end-file", map[string]interface{}{"reason": "stop"})

			Convey("Then the source is unloaded", func() {
				So((*kinds)[len(*kinds)-1], ShouldEqual, media.EventSourceUnloaded)
			})
		})
	})

	Convey("Given an observer whose file never loads", t, func() {
		o := NewObserver(media.Source{Title: "News"}, "mpv 0.38.0")
		o.Handle("end-file", map[string]interface{}{"reason": "error", "file_error": "loading failed"})

		Convey("Then the configured source is still reported", func() {
			So(o.Loaded(), ShouldBeFalse)
			source, ok := o.Source()
			So(ok, ShouldBeTrue)
			So(source.Title, ShouldEqual, "News")
		})
	})

	Convey("Given an observer without a source", t, func() {
		o := NewObserver(media.Source{}, "")

		Convey("Then no source is reported until a file loads", func() {
			_, ok := o.Source()
			So(ok, ShouldBeFalse)

			o.Handle("file-loaded", nil)
			_, ok = o.Source()
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a live stream without duration", t, func() {
		o := NewObserver(media.Source{Title: "News"}, "")
		o.Handle("file-loaded", nil)

		Convey("Then it reports live", func() {
			So(o.IsLive(), ShouldBeTrue)
			So(o.PlayerType(), ShouldEqual, "mpv")
		})
	})
}
