// FILE: logbeacon/src/internal/format/format.go
package format

import (
	"fmt"

	"logbeacon/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for encoding records and batches for delivery.
type Formatter interface {
	// Format encodes a single record.
	Format(record core.Record) ([]byte, error)

	// FormatBatch encodes a whole batch as one delivery body.
	FormatBatch(batch core.Batch) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a new Formatter by name.
func New(name string, logger *log.Logger) (Formatter, error) {
	// Default to json, the collector wire format
	if name == "" {
		name = "json"
	}

	switch name {
	case "json":
		return NewJSONFormatter(nil, logger)
	case "txt", "text":
		return NewTextFormatter(nil, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
