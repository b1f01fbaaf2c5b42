// Package network provides the HTTP client shared by the telemetry gateway.
package network

import (
	"bytes"
	"net/http"
	"time"

	"github.com/anisan-cli/playtrack/constant"
)

// Client is shared by every outbound telemetry request.
var Client = &http.Client{
	Timeout:   10 * time.Second,
	Transport: newTransport(),
}

// newTransport keeps a small idle pool; telemetry goes to a single host.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 5 * time.Second
	return t
}

// NewRequest builds a request carrying the playtrack user agent.
func NewRequest(method, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	return req, nil
}
