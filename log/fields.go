package log

// Field names shared by every structured entry.
const (
	FieldComponent = "component"
	FieldSession   = "session"
	FieldScope     = "scope"
	FieldKind      = "kind"
	FieldName      = "name"
	FieldValues    = "values"
	FieldAttrs     = "attrs"
	FieldInfo      = "info"
	FieldAsset     = "asset"
)
