// FILE: logbeacon/src/internal/core/record.go
package core

import (
	"maps"
	"time"
)

// Level is the severity of a captured record
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Type classifies where a record originated
type Type string

const (
	TypeConsole     Type = "console"
	TypeRuntime     Type = "runtime"
	TypePromise     Type = "promise"
	TypeNetwork     Type = "network"
	TypePerformance Type = "performance"
	TypeCustom      Type = "custom"
	TypeSDK         Type = "sdk"
)

// Record is one observed event. Producers fill Level, Type, Message and
// Context; the capture boundary stamps the remaining fields.
type Record struct {
	Timestamp time.Time
	Level     Level
	Type      Type
	Message   string
	Context   map[string]any

	// Enrichment
	AppName   string
	URL       string
	UserAgent string
	SessionID string
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	if r.Context != nil {
		r.Context = maps.Clone(r.Context)
	}
	return r
}

// Batch is an ordered group of records drained together for delivery.
type Batch struct {
	Records []Record
	SentAt  time.Time
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}
