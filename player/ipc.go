package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

const (
	commandAttempts = 3
	commandBackoff  = 100 * time.Millisecond
	replyTimeout    = time.Second
)

var requestSeq atomic.Int64

// request is one mpv JSON IPC command line.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
}

// reply is the answer mpv sends for a request. Event lines share the connection and carry no request_id.
type reply struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
	Event     string `json:"event"`
}

// command runs args on the player socket, retrying while the connection is refused.
func (m *MPV) command(args ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data any
	_, _, err := lo.AttemptWithDelay(commandAttempts, commandBackoff, func(int, time.Duration) error {
		var err error
		data, err = roundTrip(m.socketPath, args)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("mpv %v: %w", args[0], err)
	}

	return data, nil
}

func roundTrip(socket string, args []any) (any, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	id := requestSeq.Add(1)
	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, err
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(replyTimeout)); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var r reply
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return nil, err
		}

		if r.Event != "" || r.RequestID != id {
			continue
		}

		if r.Error != "" && r.Error != "success" {
			return nil, errors.New(r.Error)
		}

		return r.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return nil, errors.New("connection closed before reply")
}
