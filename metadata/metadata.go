// Package metadata assembles content descriptors from caller overrides and player-derived
// values and enforces which of them may still change once a session exists.
package metadata

import (
	"github.com/anisan-cli/playtrack/analytics"
	"github.com/samber/mo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StreamType of the content.
type StreamType int

const (
	StreamUnknown StreamType = iota
	StreamLive
	StreamVOD
)

func (s StreamType) String() string {
	switch s {
	case StreamLive:
		return analytics.StreamLive
	case StreamVOD:
		return analytics.StreamVOD
	default:
		return analytics.StreamUnknown
	}
}

// ContentMetadata is an immutable snapshot. Values returned by Builder.Build are deep copies.
type ContentMetadata struct {
	AssetName        string
	ViewerID         string
	StreamType       StreamType
	Duration         mo.Option[int]
	ApplicationName  string
	StreamURL        string
	DefaultResource  string
	PlayerName       string
	EncodedFrameRate mo.Option[float64]
	Custom           *orderedmap.OrderedMap[string, string]
}

// Clone deep copies the metadata.
func (m ContentMetadata) Clone() ContentMetadata {
	out := m
	out.Custom = orderedmap.New[string, string]()
	if m.Custom != nil {
		for pair := m.Custom.Oldest(); pair != nil; pair = pair.Next() {
			out.Custom.Set(pair.Key, pair.Value)
		}
	}
	return out
}

// Tag returns a custom tag.
func (m ContentMetadata) Tag(key string) (string, bool) {
	if m.Custom == nil {
		return "", false
	}
	return m.Custom.Get(key)
}

// ContentInfo converts the fields in the set to the analytics representation.
// Custom tags go in first so a custom key never shadows a standard one.
func (m ContentMetadata) ContentInfo(fields FieldSet) analytics.ContentInfo {
	info := analytics.ContentInfo{}

	if fields.Has(FieldCustom) && m.Custom != nil {
		for pair := m.Custom.Oldest(); pair != nil; pair = pair.Next() {
			info[pair.Key] = pair.Value
		}
	}

	setString := func(f Field, value string) {
		if fields.Has(f) && value != "" {
			info[f.String()] = value
		}
	}

	setString(FieldAssetName, m.AssetName)
	setString(FieldViewerID, m.ViewerID)
	setString(FieldApplicationName, m.ApplicationName)
	setString(FieldStreamURL, m.StreamURL)
	setString(FieldDefaultResource, m.DefaultResource)
	setString(FieldPlayerName, m.PlayerName)

	if fields.Has(FieldStreamType) && m.StreamType != StreamUnknown {
		info[analytics.KeyStreamType] = m.StreamType.String()
	}

	if d, ok := m.Duration.Get(); ok && fields.Has(FieldDuration) {
		info[analytics.KeyDuration] = d
	}

	if fps, ok := m.EncodedFrameRate.Get(); ok && fields.Has(FieldEncodedFrameRate) {
		info[analytics.KeyEncodedFrameRate] = fps
	}

	return info
}

// Overrides are caller-supplied values. Nil fields are left untouched when merged.
type Overrides struct {
	AssetName        *string           `json:"assetName,omitempty" jsonschema:"description=Name of the asset as shown in dashboards"`
	ViewerID         *string           `json:"viewerId,omitempty"`
	StreamType       *StreamType       `json:"streamType,omitempty" jsonschema:"description=0 unknown; 1 live; 2 vod"`
	Duration         *int              `json:"duration,omitempty" jsonschema:"minimum=0,description=Content length in seconds"`
	ApplicationName  *string           `json:"applicationName,omitempty"`
	StreamURL        *string           `json:"streamUrl,omitempty"`
	DefaultResource  *string           `json:"defaultResource,omitempty"`
	EncodedFrameRate *float64          `json:"encodedFrameRate,omitempty"`
	Custom           map[string]string `json:"custom,omitempty"`
}

// Derived are values read from the attached player and its source.
type Derived struct {
	AssetName        string
	ViewerID         string
	StreamType       StreamType
	Duration         mo.Option[int]
	StreamURL        string
	PlayerName       string
	EncodedFrameRate mo.Option[float64]
	Custom           map[string]string
}
