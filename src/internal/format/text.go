// FILE: logbeacon/src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"
	"time"

	"logbeacon/src/internal/core"

	"github.com/lixenwraith/log"
)

const defaultTextTemplate = "[{{FmtTime .Timestamp}}] [{{.Level}}] {{.Type}}" +
	"{{if .Message}} - {{.Message}}{{end}}{{if .Fields}} {{.Fields}}{{end}}"

// TextFormatterOptions configures the text formatter.
type TextFormatterOptions struct {
	Template        string
	TimestampFormat string
}

// Produces human-readable text lines using templates
type TextFormatter struct {
	config   *TextFormatterOptions
	template *template.Template
	logger   *log.Logger
}

// Creates a new text formatter
func NewTextFormatter(opts *TextFormatterOptions, logger *log.Logger) (*TextFormatter, error) {
	if opts == nil {
		opts = &TextFormatterOptions{}
	}
	if opts.Template == "" {
		opts.Template = defaultTextTemplate
	}
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339Nano
	}

	f := &TextFormatter{
		config: opts,
		logger: logger,
	}

	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.config.TimestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("record").Funcs(funcMap).Parse(f.config.Template)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Formats the record using the template
func (f *TextFormatter) Format(record core.Record) ([]byte, error) {
	data := map[string]any{
		"Timestamp": record.Timestamp,
		"Level":     string(record.Level),
		"Type":      string(record.Type),
		"Message":   record.Message,
		"AppName":   record.AppName,
		"URL":       record.URL,
		"Fields":    renderFields(record.Context),
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%s] [%s] %s - %s\n",
			record.Timestamp.Format(f.config.TimestampFormat),
			record.Level,
			record.Type,
			record.Message)
		return []byte(fallback), nil
	}

	// Ensure newline at end
	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

// FormatBatch renders one line per record.
func (f *TextFormatter) FormatBatch(batch core.Batch) ([]byte, error) {
	var buf bytes.Buffer
	for _, record := range batch.Records {
		line, err := f.Format(record)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// Returns the formatter name
func (f *TextFormatter) Name() string {
	return "txt"
}

// renderFields prints context as sorted key=value pairs.
func renderFields(context map[string]any) string {
	if len(context) == 0 {
		return ""
	}
	keys := slices.Sorted(maps.Keys(context))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, context[k]))
	}
	return strings.Join(parts, " ")
}
