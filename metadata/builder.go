package metadata

import (
	"maps"
	"slices"

	"github.com/anisan-cli/playtrack/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Builder merges overrides over player-derived values over earlier custom tags.
// It is not safe for concurrent use.
type Builder struct {
	overrides Overrides
	derived   Derived
	tags      *orderedmap.OrderedMap[string, string]

	sessionActive bool
	firstFrame    bool
	lockedAsset   string
	suspended     FieldSet
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{tags: orderedmap.New[string, string]()}
}

// Tag sets a custom tag in the lowest layer.
func (b *Builder) Tag(key, value string) {
	b.tags.Set(key, value)
}

// SetOverrides merges o into the current overrides. Only provided keys are replaced.
func (b *Builder) SetOverrides(o Overrides) {
	if b.sessionActive {
		b.warnRestricted(o)
	}

	b.overrides.AssetName = merge(b.overrides.AssetName, o.AssetName)
	b.overrides.ViewerID = merge(b.overrides.ViewerID, o.ViewerID)
	b.overrides.StreamType = merge(b.overrides.StreamType, o.StreamType)
	b.overrides.Duration = merge(b.overrides.Duration, o.Duration)
	b.overrides.ApplicationName = merge(b.overrides.ApplicationName, o.ApplicationName)
	b.overrides.StreamURL = merge(b.overrides.StreamURL, o.StreamURL)
	b.overrides.DefaultResource = merge(b.overrides.DefaultResource, o.DefaultResource)
	b.overrides.EncodedFrameRate = merge(b.overrides.EncodedFrameRate, o.EncodedFrameRate)

	if len(o.Custom) > 0 {
		if b.overrides.Custom == nil {
			b.overrides.Custom = make(map[string]string, len(o.Custom))
		}
		maps.Copy(b.overrides.Custom, o.Custom)
	}
}

func merge[T any](current, next *T) *T {
	if next == nil {
		return current
	}
	return lo.ToPtr(*next)
}

func (b *Builder) warnRestricted(o Overrides) {
	logger := log.Component("metadata")

	if o.AssetName != nil && *o.AssetName != b.lockedAsset {
		logger.Warnf("asset name cannot change during a session, keeping %q", b.lockedAsset)
	}

	if !b.firstFrame {
		return
	}

	if o.ViewerID != nil {
		logger.Warn("viewer id changed after the first frame, it may not reach the backend")
	}

	if o.StreamType != nil {
		logger.Warn("stream type changed after the first frame, it may not reach the backend")
	}

	if o.ApplicationName != nil {
		logger.Warn("application name changed after the first frame, it may not reach the backend")
	}
}

// Derive replaces the player-derived layer.
func (b *Builder) Derive(d Derived) {
	d.Custom = maps.Clone(d.Custom)
	b.derived = d
}

// Build returns a snapshot of the merged metadata.
func (b *Builder) Build() ContentMetadata {
	m := ContentMetadata{
		AssetName:        pick(b.overrides.AssetName, b.derived.AssetName),
		ViewerID:         pick(b.overrides.ViewerID, b.derived.ViewerID),
		StreamType:       pick(b.overrides.StreamType, b.derived.StreamType),
		ApplicationName:  lo.FromPtr(b.overrides.ApplicationName),
		StreamURL:        pick(b.overrides.StreamURL, b.derived.StreamURL),
		DefaultResource:  lo.FromPtr(b.overrides.DefaultResource),
		PlayerName:       b.derived.PlayerName,
		Duration:         pickOption(b.overrides.Duration, b.derived.Duration),
		EncodedFrameRate: pickOption(b.overrides.EncodedFrameRate, b.derived.EncodedFrameRate),
		Custom:           orderedmap.New[string, string](),
	}

	for pair := b.tags.Oldest(); pair != nil; pair = pair.Next() {
		m.Custom.Set(pair.Key, pair.Value)
	}

	for _, layer := range []map[string]string{b.derived.Custom, b.overrides.Custom} {
		keys := lo.Keys(layer)
		slices.Sort(keys)
		for _, k := range keys {
			m.Custom.Set(k, layer[k])
		}
	}

	if b.sessionActive && b.lockedAsset != "" {
		m.AssetName = b.lockedAsset
	}

	return m
}

func pick[T comparable](override *T, derived T) T {
	if override != nil {
		return *override
	}
	return derived
}

func pickOption[T any](override *T, derived mo.Option[T]) mo.Option[T] {
	if override != nil {
		return mo.Some(*override)
	}
	return derived
}

// Overrides returns a copy of the caller overrides.
func (b *Builder) Overrides() Overrides {
	o := b.overrides
	o.Custom = maps.Clone(o.Custom)
	return o
}

// Reset clears overrides, derived values and tags. Session lifecycle flags are kept.
func (b *Builder) Reset() {
	b.overrides = Overrides{}
	b.derived = Derived{}
	b.tags = orderedmap.New[string, string]()
}

// SessionStarted locks the asset name for the new session.
func (b *Builder) SessionStarted() {
	b.sessionActive = true
	b.firstFrame = false
	b.lockedAsset = ""
	b.lockedAsset = b.Build().AssetName
}

// SessionEnded reopens every field for the next session.
func (b *Builder) SessionEnded() {
	b.sessionActive = false
	b.firstFrame = false
	b.lockedAsset = ""
	b.suspended = NoFields
}

// FirstFrameRendered closes the window for viewer id, stream type and application name.
// Unset values at this point are reported as a data quality warning.
func (b *Builder) FirstFrameRendered() {
	if !b.sessionActive || b.firstFrame {
		return
	}
	b.firstFrame = true

	m := b.Build()
	logger := log.Component("metadata")

	if m.ViewerID == "" {
		logger.Warn("viewer id is not set at first frame")
	}

	if m.StreamType == StreamUnknown {
		logger.Warn("stream type is not set at first frame")
	}

	if m.ApplicationName == "" {
		logger.Warn("application name is not set at first frame")
	}
}

// Suspend withholds the fields from updates until Resume.
func (b *Builder) Suspend(fields FieldSet) {
	b.suspended = fields
}

// Resume lifts the suspension.
func (b *Builder) Resume() {
	b.suspended = NoFields
}

// Updatable is the set of fields a content info update may carry right now.
func (b *Builder) Updatable() FieldSet {
	fields := AllFields
	if b.sessionActive {
		fields = fields.Without(ImmutableAfterStart)
	}

	if b.firstFrame {
		fields = fields.Without(ImmutableAfterFirstFrame)
	}

	return fields.Without(b.suspended)
}
