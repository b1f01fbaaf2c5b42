package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/log"
)

// Failure is one undelivered batch.
type Failure struct {
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Queue is a JSON-lines file of failed batches.
type Queue struct {
	path string
	mu   sync.Mutex

	// Sleep waits between replay attempts.
	Sleep func(time.Duration)
}

// NewQueue opens the queue stored at path.
func NewQueue(path string) *Queue {
	return &Queue{path: path, Sleep: time.Sleep}
}

// Push appends a failed batch.
func (q *Queue) Push(payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := filesystem.API().MkdirAll(filepath.Dir(q.path), os.ModePerm); err != nil {
		return err
	}

	f, err := filesystem.API().OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(Failure{
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	})
}

// Pending returns the queued failures.
func (q *Queue) Pending() ([]Failure, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.read()
}

func (q *Queue) read() ([]Failure, error) {
	content, err := filesystem.API().ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var failures []Failure
	decoder := json.NewDecoder(bytes.NewReader(content))
	for decoder.More() {
		var f Failure
		if err := decoder.Decode(&f); err != nil {
			break
		}
		failures = append(failures, f)
	}

	return failures, nil
}

func (q *Queue) write(failures []Failure) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, f := range failures {
		if err := encoder.Encode(f); err != nil {
			return err
		}
	}

	return filesystem.API().WriteFile(q.path, buf.Bytes(), 0644)
}

// Replay posts every queued batch with incremental, jittered delays.
// Delivered batches are dropped from the queue; the rest stay for the next run.
func (q *Queue) Replay(ctx context.Context, client *http.Client, url, customerKey string) (delivered int, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	failures, err := q.read()
	if err != nil || len(failures) == 0 {
		return 0, err
	}

	var remaining []Failure
	for i, f := range failures {
		if ctx.Err() != nil {
			remaining = append(remaining, failures[i:]...)
			break
		}

		backoff := time.Duration((1<<min(i, 6))*100)*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond
		q.Sleep(backoff)

		if err := Post(ctx, client, url, customerKey, f.Payload); err != nil {
			log.Debugf("gateway: replay of batch from %d failed: %v", f.Timestamp, err)
			remaining = append(remaining, f)
			continue
		}

		delivered++
	}

	return delivered, q.write(remaining)
}
