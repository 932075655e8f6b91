package logging

// Common structured log field keys.
const (
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldUser       = "user"
	FieldItem       = "item"
	FieldItemID     = "item_id"
)
