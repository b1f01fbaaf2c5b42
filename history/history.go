// Package history keeps per-asset summaries of tracked playback sessions.
package history

import (
	"sync"
	"time"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/util"
	"github.com/anisan-cli/playtrack/where"
	"github.com/metafates/gache"
)

var cacher = sync.OnceValue(func() *gache.Cache[map[string]*Summary] {
	return gache.New[map[string]*Summary](
		&gache.Options{
			Path:       where.History(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
})

// Get returns every saved summary keyed by asset name.
func Get() (map[string]*Summary, error) {
	cached, expired, err := cacher().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Summary), nil
	}
	return cached, nil
}

// Save folds a finished session into the summary of its asset.
func Save(session Session) error {
	if session.AssetName == "" {
		return nil
	}

	saved, err := Get()
	if err != nil {
		return err
	}

	summary, ok := saved[session.AssetName]
	if !ok {
		summary = &Summary{AssetName: session.AssetName}
		saved[session.AssetName] = summary
	}

	summary.Sessions++
	summary.Stalls += session.Stalls
	summary.Errors += session.Errors
	summary.WatchedPercentage = util.Max(summary.WatchedPercentage, session.WatchedPercentage())

	if session.StreamType != "" {
		summary.StreamType = session.StreamType
	}

	if session.Ended.After(summary.LastWatched) {
		summary.LastWatched = session.Ended
	}

	return cacher().Set(saved)
}

// Remove deletes the summary of an asset.
func Remove(assetName string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, assetName)
	return cacher().Set(saved)
}

// Clear deletes every summary.
func Clear() error {
	return cacher().Set(make(map[string]*Summary))
}

// Summary aggregates every session of one asset.
type Summary struct {
	AssetName         string    `json:"asset_name"`
	StreamType        string    `json:"stream_type,omitempty"`
	Sessions          int       `json:"sessions"`
	Stalls            int       `json:"stalls"`
	Errors            int       `json:"errors"`
	WatchedPercentage float64   `json:"watched_percentage"`
	LastWatched       time.Time `json:"last_watched"`
}
