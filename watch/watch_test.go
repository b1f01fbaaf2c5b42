package watch

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

// fakeMPV serves the event side of mpv's IPC protocol on a unix socket.
type fakeMPV struct {
	socket  string
	version string
	events  []string

	ln     net.Listener
	conns  chan net.Conn
	exited chan struct{}
	loaded string
}

func newFakeMPV(t *testing.T, events ...string) *fakeMPV {
	dir, err := os.MkdirTemp("", "pt")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	return &fakeMPV{
		socket:  filepath.Join(dir, "mpv.sock"),
		version: "mpv 0.37.0",
		events:  events,
		conns:   make(chan net.Conn, 1),
		exited:  make(chan struct{}),
	}
}

func (f *fakeMPV) Start(string, map[string]string) error {
	ln, err := net.Listen("unix", f.socket)
	if err != nil {
		return err
	}
	f.ln = ln

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func() {
			scanner := bufio.NewScanner(conn)
			for scanner.Scan() {
			}
		}()
		f.conns <- conn
	}()

	return nil
}

func (f *fakeMPV) Load(target string) error {
	f.loaded = target

	select {
	case conn := <-f.conns:
		for _, ev := range f.events {
			if _, err := fmt.Fprintln(conn, ev); err != nil {
				return err
			}
		}
		_ = conn.Close()
	case <-time.After(2 * time.Second):
		return fmt.Errorf("listener never connected")
	}

	close(f.exited)
	return nil
}

func (f *fakeMPV) Version() (string, error) { return f.version, nil }
func (f *fakeMPV) IsRunning() bool           { return f.ln != nil }
func (f *fakeMPV) Socket() string            { return f.socket }
func (f *fakeMPV) Wait() <-chan struct{}     { return f.exited }

func (f *fakeMPV) Close() error {
	if f.ln == nil {
		return nil
	}
	return f.ln.Close()
}

type memorySink struct {
	mu      sync.Mutex
	records []record.Record
	closed  int
}

func (m *memorySink) Write(r record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *memorySink) kinds() []record.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.records, func(r record.Record, _ int) record.Kind { return r.Kind })
}

func (m *memorySink) find(kind record.Kind) (record.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Find(m.records, func(r record.Record) bool { return r.Kind == kind })
}

func (m *memorySink) states() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.FilterMap(m.records, func(r record.Record, _ int) (any, bool) {
		if r.Kind != record.KindMetric || r.Name != string(analytics.MetricPlayerState) {
			return nil, false
		}
		return r.Values[0], true
	})
}

var playback = []string{
	`{"event":"property-change","id":2,"name":"duration","data":10.0}`,
	`{"event":"file-loaded"}`,
	`{"event":"playback-restart"}`,
	`{"event":"property-change","id":1,"name":"time-pos","data":4.0}`,
	`{"event":"end-file","reason":"eof"}`,
}

func TestRun(t *testing.T) {
	Convey("Given a player that plays a file to the end", t, func() {
		backend := newFakeMPV(t, playback...)
		sink := &memorySink{}

		config := Config{ApplicationName: "playtrack-test", ViewerID: "viewer-1"}
		options := Options{
			URL:       "https://cdn.example.com/clip.mp4",
			Title:     "Clip",
			Overrides: metadata.Overrides{AssetName: lo.ToPtr("Clip (director's cut)")},
		}

		err := run(context.Background(), backend, sink, config, options)

		Convey("Then the run completes and the file was loaded", func() {
			So(err, ShouldBeNil)
			So(backend.loaded, ShouldEqual, options.URL)
		})

		Convey("Then a full session is recorded", func() {
			requested, ok := sink.find(record.KindPlaybackRequested)
			So(ok, ShouldBeTrue)
			So(requested.Info[analytics.KeyAssetName], ShouldEqual, "Clip (director's cut)")
			So(requested.Info[analytics.KeyApplicationName], ShouldEqual, "playtrack-test")
			So(requested.Info[analytics.KeyViewerID], ShouldEqual, "viewer-1")

			So(sink.kinds(), ShouldContain, record.KindPlaybackEnded)
			So(sink.states(), ShouldContain, analytics.StatePlaying)
			So(sink.states(), ShouldContain, analytics.StateStopped)
		})

		Convey("Then the sink is closed exactly once", func() {
			So(sink.closed, ShouldEqual, 1)
		})
	})

	Convey("Given a player older than the minimum version", t, func() {
		backend := newFakeMPV(t)
		backend.version = "mpv 0.30.0"
		sink := &memorySink{}

		err := run(context.Background(), backend, sink, Config{}, Options{URL: "https://a/b.mp4", Title: "B"})

		Convey("Then the run is refused before anything is loaded", func() {
			So(err, ShouldNotBeNil)
			So(backend.loaded, ShouldBeEmpty)
			So(sink.closed, ShouldEqual, 1)
		})
	})
}

func TestApplyOverrides(t *testing.T) {
	filesystem.SetMemMapFs()

	Convey("Given a metadata script", t, func() {
		So(afero.WriteFile(filesystem.API(), "/scripts/meta.lua", []byte(`
function metadata(source)
  return { asset_name = "scripted " .. source.title, default_resource = "CDN-A" }
end
`), 0o644), ShouldBeNil)

		backend := newFakeMPV(t, playback...)
		sink := &memorySink{}

		config := Config{Script: "/scripts/meta.lua"}
		options := Options{URL: "https://cdn.example.com/clip.mp4", Title: "Clip"}

		So(run(context.Background(), backend, sink, config, options), ShouldBeNil)

		Convey("Then scripted values reach the session", func() {
			requested, ok := sink.find(record.KindPlaybackRequested)
			So(ok, ShouldBeTrue)
			So(requested.Info[analytics.KeyAssetName], ShouldEqual, "scripted Clip")
			So(requested.Info[analytics.KeyDefaultResource], ShouldEqual, "CDN-A")
		})
	})

	Convey("Given a missing metadata script", t, func() {
		backend := newFakeMPV(t)
		err := run(context.Background(), backend, &memorySink{}, Config{Script: "/scripts/none.lua"}, Options{URL: "https://a/b.mp4", Title: "B"})

		Convey("Then the run fails", func() {
			So(err, ShouldNotBeNil)
			So(backend.loaded, ShouldBeEmpty)
		})
	})
}

func TestNewSink(t *testing.T) {
	Convey("Given an unknown sink name", t, func() {
		_, err := primarySink(context.Background(), "kafka")

		Convey("Then it is refused", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Then every advertised sink except the gateway builds without configuration", t, func() {
		filesystem.SetMemMapFs()
		for _, name := range lo.Without(AvailableSinks(), SinkGateway) {
			sink, err := primarySink(context.Background(), name)
			So(err, ShouldBeNil)
			So(sink.Close(), ShouldBeNil)
		}
	})
}
