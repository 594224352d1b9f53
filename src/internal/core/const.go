// FILE: logbeacon/src/internal/core/const.go
package core

import "time"

// Record wire keys
const (
	FieldTimestamp = "timestamp"
	FieldLevel     = "level"
	FieldType      = "type"
	FieldMessage   = "message"
	FieldAppName   = "appName"
	FieldURL       = "url"
	FieldUserAgent = "userAgent"
	FieldSessionID = "sessionId"
)

// Payload wire keys
const (
	PayloadBatch  = "batch"
	PayloadSentAt = "sent_at"
)

// Context keys set by producers
const (
	ContextData       = "data"
	ContextSource     = "source"
	ContextLine       = "line"
	ContextColumn     = "column"
	ContextReason     = "reason"
	ContextMethod     = "method"
	ContextStatus     = "status"
	ContextRequestURL = "requestUrl"
	ContextLoadTimeMs = "loadTimeMs"
)

const (
	DefaultAppName       = "unknown-app"
	DefaultFlushInterval = 1000 * time.Millisecond
	DefaultQueueSize     = 64
	DefaultTimeout       = 10 * time.Second

	InitMessage      = "Logger SDK initialized"
	RejectionMessage = "Unhandled Promise Rejection"
)

// IsStandardField reports whether key is owned by the record envelope.
func IsStandardField(key string) bool {
	switch key {
	case FieldTimestamp, FieldLevel, FieldType, FieldMessage,
		FieldAppName, FieldURL, FieldUserAgent, FieldSessionID:
		return true
	}
	return false
}
