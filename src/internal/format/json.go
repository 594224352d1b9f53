// FILE: logbeacon/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"logbeacon/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatterOptions configures the JSON formatter.
type JSONFormatterOptions struct {
	Pretty bool
}

// JSONFormatter produces the collector wire format.
type JSONFormatter struct {
	config *JSONFormatterOptions
	logger *log.Logger
}

// payload is the delivery body; field order is kept stable for readers.
type payload struct {
	Batch  []json.RawMessage `json:"batch"`
	SentAt string            `json:"sent_at"`
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts *JSONFormatterOptions, logger *log.Logger) (*JSONFormatter, error) {
	if opts == nil {
		opts = &JSONFormatterOptions{}
	}
	return &JSONFormatter{
		config: opts,
		logger: logger,
	}, nil
}

// Format encodes one record as a flat JSON object. Context keys are
// spread next to the envelope fields; envelope fields win on collision.
func (f *JSONFormatter) Format(record core.Record) ([]byte, error) {
	output := f.envelope(record)

	for k, v := range record.Context {
		if !core.IsStandardField(k) {
			output[k] = v
		}
	}

	result, err := f.marshal(output)
	if err != nil {
		// Unencodable context values are sent as their string form
		f.logger.Debug("msg", "Record context not JSON encodable, stringifying",
			"component", "json_formatter",
			"type", record.Type,
			"error", err)

		output = f.envelope(record)
		for k, v := range record.Context {
			if !core.IsStandardField(k) {
				output[k] = stringify(v)
			}
		}
		if result, err = f.marshal(output); err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	return result, nil
}

// FormatBatch encodes a batch as {"batch": [...], "sent_at": "..."}.
func (f *JSONFormatter) FormatBatch(batch core.Batch) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(batch.Records))

	for _, record := range batch.Records {
		formatted, err := f.Format(record)
		if err != nil {
			f.logger.Warn("msg", "Failed to format record in batch",
				"component", "json_formatter",
				"error", err)
			continue
		}
		records = append(records, formatted)
	}

	body := payload{
		Batch:  records,
		SentAt: batch.SentAt.UTC().Format(time.RFC3339Nano),
	}

	if f.config.Pretty {
		return json.MarshalIndent(body, "", "  ")
	}
	return json.Marshal(body)
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) envelope(record core.Record) map[string]any {
	output := map[string]any{
		core.FieldTimestamp: record.Timestamp.UTC().Format(time.RFC3339Nano),
		core.FieldLevel:     record.Level,
		core.FieldType:      record.Type,
		core.FieldAppName:   record.AppName,
		core.FieldURL:       record.URL,
		core.FieldUserAgent: record.UserAgent,
		core.FieldSessionID: record.SessionID,
	}
	if record.Message != "" {
		output[core.FieldMessage] = record.Message
	}
	return output
}

func (f *JSONFormatter) marshal(v any) ([]byte, error) {
	if f.config.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func stringify(v any) any {
	if _, err := json.Marshal(v); err == nil {
		return v
	}
	return fmt.Sprint(v)
}
