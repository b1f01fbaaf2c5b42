// Package gateway ships analytics records to an HTTP collector in batches.
//
// Batches that cannot be delivered are appended to an offline queue on disk and replayed
// with jittered backoff the next time Replay runs.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/network"
)

// HeaderCustomerKey carries the collector account key.
const HeaderCustomerKey = "X-Customer-Key"

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("gateway closed")

// Options configures a gateway sink.
type Options struct {
	URL           string
	CustomerKey   string
	FlushInterval time.Duration
	BatchSize     int
	Client        *http.Client
	Queue         *Queue
}

// Batch is the body posted to the collector.
type Batch struct {
	Records []record.Record `json:"records"`
}

// Sink buffers records and posts them as batches.
type Sink struct {
	options Options

	mu      sync.Mutex
	pending []record.Record
	closed  bool

	flush chan struct{}
	stop  chan struct{}
	done  chan struct{}
}

// New starts a gateway sink. Close must be called to stop its flush loop.
func New(options Options) (*Sink, error) {
	if options.URL == "" {
		return nil, errors.New("gateway url is empty")
	}

	if options.FlushInterval <= 0 {
		options.FlushInterval = 20 * time.Second
	}

	if options.BatchSize <= 0 {
		options.BatchSize = 64
	}

	if options.Client == nil {
		options.Client = network.Client
	}

	s := &Sink{
		options: options,
		flush:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go s.loop()
	return s, nil
}

func (s *Sink) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.options.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		case <-s.flush:
		}

		s.deliver(context.Background(), s.take())
	}
}

func (s *Sink) take() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.pending
	s.pending = nil
	return batch
}

// Write implements record.Sink.
func (s *Sink) Write(r record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.pending = append(s.pending, r)
	if len(s.pending) >= s.options.BatchSize {
		select {
		case s.flush <- struct{}{}:
		default:
		}
	}

	return nil
}

// Close stops the flush loop and delivers whatever is still buffered.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	return s.deliver(context.Background(), s.take())
}

func (s *Sink) deliver(ctx context.Context, records []record.Record) error {
	if len(records) == 0 {
		return nil
	}

	body, err := json.Marshal(Batch{Records: records})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	if err = Post(ctx, s.options.Client, s.options.URL, s.options.CustomerKey, body); err == nil {
		return nil
	}

	log.Warnf("gateway: batch of %d records not delivered: %v", len(records), err)
	if s.options.Queue == nil {
		return err
	}

	if qerr := s.options.Queue.Push(body); qerr != nil {
		return errors.Join(err, qerr)
	}

	return nil
}

// Post sends one encoded batch to the collector.
func Post(ctx context.Context, client *http.Client, url, customerKey string, body []byte) error {
	req, err := network.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return err
	}

	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if customerKey != "" {
		req.Header.Set(HeaderCustomerKey, customerKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector responded %s", resp.Status)
	}

	return nil
}
