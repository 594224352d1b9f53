// FILE: logbeacon/src/internal/transport/console.go
package transport

import (
	"fmt"
	"io"

	"logbeacon/src/internal/core"
	"logbeacon/src/internal/format"

	"github.com/lixenwraith/log"
)

// Console writes batches as text lines to a local writer.
type Console struct {
	*dispatcher

	writer    io.Writer
	formatter format.Formatter
	logger    *log.Logger
}

// NewConsole creates a console transport writing to w.
func NewConsole(w io.Writer, queueSize int, logger *log.Logger) (*Console, error) {
	if w == nil {
		return nil, fmt.Errorf("console transport writer cannot be nil")
	}

	formatter, err := format.New("txt", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	c := &Console{
		writer:    w,
		formatter: formatter,
		logger:    logger,
	}
	c.dispatcher = newDispatcher("console_transport", queueSize, c.write, logger)
	return c, nil
}

// GetStats returns the transport's statistics.
func (c *Console) GetStats() Stats {
	return c.dispatcher.stats("console", nil)
}

func (c *Console) write(batch core.Batch) error {
	body, err := c.formatter.FormatBatch(batch)
	if err != nil {
		return fmt.Errorf("failed to format batch: %w", err)
	}
	_, err = c.writer.Write(body)
	return err
}
