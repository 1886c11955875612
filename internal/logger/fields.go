package logger

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"

	FieldCluster = "cluster"
	FieldLevel   = "level"
	FieldEpoch   = "epoch"
	FieldUser    = "user_id"
	FieldTrack   = "track_id"
	FieldQuery   = "query"
	FieldURL     = "url"
	FieldRequest = "request_id"
	FieldZoom    = "zoom"
)
