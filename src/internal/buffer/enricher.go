// FILE: logbeacon/src/internal/buffer/enricher.go
package buffer

import (
	"os"

	"logbeacon/src/internal/clock"
	"logbeacon/src/internal/core"
	"logbeacon/src/internal/version"

	"github.com/google/uuid"
)

// Enricher stamps capture-time fields onto partial records so that
// producers never duplicate that logic.
type Enricher struct {
	clock     clock.Clock
	appName   string
	url       string
	userAgent string
	sessionID string
}

// EnricherOptions carries the identity applied to every record. Empty
// fields fall back to process-derived defaults.
type EnricherOptions struct {
	AppName   string
	URL       string
	UserAgent string
	SessionID string
}

// NewEnricher creates an enricher, filling defaults for empty options.
func NewEnricher(clk clock.Clock, opts EnricherOptions) *Enricher {
	if clk == nil {
		clk = clock.Real()
	}
	e := &Enricher{
		clock:     clk,
		appName:   opts.AppName,
		url:       opts.URL,
		userAgent: opts.UserAgent,
		sessionID: opts.SessionID,
	}
	if e.appName == "" {
		e.appName = core.DefaultAppName
	}
	if e.url == "" {
		e.url = DefaultHostURL()
	}
	if e.userAgent == "" {
		e.userAgent = DefaultUserAgent()
	}
	if e.sessionID == "" {
		e.sessionID = uuid.NewString()
	}
	return e
}

// Stamp returns the enriched copy of partial. A timestamp already set
// by the producer is kept; the context map is copied.
func (e *Enricher) Stamp(partial core.Record) core.Record {
	record := partial.Clone()
	if record.Timestamp.IsZero() {
		record.Timestamp = e.clock.Now()
	}
	record.AppName = e.appName
	record.URL = e.url
	record.UserAgent = e.userAgent
	record.SessionID = e.sessionID
	return record
}

// SessionID returns the session identity stamped on records.
func (e *Enricher) SessionID() string {
	return e.sessionID
}

// AppName returns the application name stamped on records.
func (e *Enricher) AppName() string {
	return e.appName
}

// DefaultHostURL identifies the host process when no URL is configured.
func DefaultHostURL() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "host://" + host
}

// DefaultUserAgent describes the client runtime.
func DefaultUserAgent() string {
	return version.UserAgent()
}
