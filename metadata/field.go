package metadata

import (
	"strings"

	"github.com/anisan-cli/playtrack/analytics"
)

// Field identifies one ContentMetadata field.
type Field uint16

const (
	FieldAssetName Field = 1 << iota
	FieldViewerID
	FieldStreamType
	FieldApplicationName
	FieldStreamURL
	FieldDefaultResource
	FieldDuration
	FieldEncodedFrameRate
	FieldPlayerName
	FieldCustom
)

var fieldKeys = map[Field]string{
	FieldAssetName:        analytics.KeyAssetName,
	FieldViewerID:         analytics.KeyViewerID,
	FieldStreamType:       analytics.KeyStreamType,
	FieldApplicationName:  analytics.KeyApplicationName,
	FieldStreamURL:        analytics.KeyStreamURL,
	FieldDefaultResource:  analytics.KeyDefaultResource,
	FieldDuration:         analytics.KeyDuration,
	FieldEncodedFrameRate: analytics.KeyEncodedFrameRate,
	FieldPlayerName:       analytics.KeyPlayerName,
	FieldCustom:           "custom",
}

// String returns the content info key of the field.
func (f Field) String() string {
	if k, ok := fieldKeys[f]; ok {
		return k
	}
	return "unknown"
}

// FieldSet is a set of fields, entered and left as one value.
type FieldSet uint16

// AllFields contains every field.
const AllFields = FieldSet(FieldCustom<<1 - 1)

// NoFields is the empty set.
const NoFields FieldSet = 0

// SetOf builds a set from fields.
func SetOf(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s |= FieldSet(f)
	}
	return s
}

func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

func (s FieldSet) With(other FieldSet) FieldSet {
	return s | other
}

func (s FieldSet) Without(other FieldSet) FieldSet {
	return s &^ other
}

// Fields lists the members in declaration order.
func (s FieldSet) Fields() []Field {
	var fields []Field
	for f := FieldAssetName; f <= FieldCustom; f <<= 1 {
		if s.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (s FieldSet) String() string {
	names := make([]string, 0, len(fieldKeys))
	for _, f := range s.Fields() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// ImmutableAfterStart are fixed once a session is created.
const ImmutableAfterStart = FieldSet(FieldAssetName)

// ImmutableAfterFirstFrame may change only until the first frame is rendered.
const ImmutableAfterFirstFrame = FieldSet(FieldViewerID | FieldStreamType | FieldApplicationName)

// AdBreakRestricted are withheld from content info updates while an ad plays.
const AdBreakRestricted = AllFields
