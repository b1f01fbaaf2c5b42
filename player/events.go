package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/anisan-cli/playtrack/log"
)

// EventCallback receives property changes as (name, value) and other mpv events as (event, payload).
type EventCallback func(property string, data any)

// ObservedProperties are watched with observe_property once the listener starts.
var ObservedProperties = []string{
	"time-pos",
	"duration",
	"pause",
	"seeking",
	"paused-for-cache",
	"eof-reached",
	"mute",
	"current-tracks/audio",
	"current-tracks/sub",
	"video-params",
	"video-bitrate",
	"estimated-vf-fps",
}

const maxEventLine = 1 << 20

// EventListener streams mpv events over its own IPC connection.
type EventListener struct {
	socketPath string
	callback   EventCallback

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	stopped   bool
	done      chan struct{}
}

func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

// Start registers the observers and starts reading.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener: %w", err)
	}

	// mpv sends property-change events only to the connection that asked for them.
	encoder := json.NewEncoder(conn)
	for i, name := range ObservedProperties {
		if err := encoder.Encode(request{Command: []any{"observe_property", i + 1, name}}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop(conn)

	log.Component("player").Debugf("observing %d properties on %s", len(ObservedProperties), el.socketPath)
	return nil
}

// Done is closed once reading stops, for example because mpv quit.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

// Stop closes the connection and waits for the read loop.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}

	el.stopped = true
	el.conn.Close()
	el.mu.Unlock()

	<-el.done
}

func (el *EventListener) readLoop(conn net.Conn) {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
		close(el.done)
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxEventLine)

	for scanner.Scan() {
		el.processEvent(scanner.Text())
	}

	el.mu.Lock()
	stopped := el.stopped
	el.mu.Unlock()

	if err := scanner.Err(); err != nil && !stopped && !errors.Is(err, net.ErrClosed) {
		log.Warnf("mpv event stream: %v", err)
	}
}

// processEvent dispatches one JSON line. Command replies carry no event and are dropped.
func (el *EventListener) processEvent(line string) {
	if el.callback == nil {
		return
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	kind, ok := event["event"].(string)
	if !ok {
		return
	}

	if kind != "property-change" {
		el.callback(kind, event)
		return
	}

	if name, _ := event["name"].(string); name != "" {
		el.callback(name, event["data"])
	}
}
