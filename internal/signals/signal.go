// Package signals receives completion notifications from the deployed
// instrument surfaces over a loopback HTTP endpoint and records them in
// the local store. The surfaces live outside this process; this receiver
// is the only writer of the completion flags besides the surfaces' own
// clients.
package signals

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ProtocolVersion identifies the receiver contract version exposed via /health.
	ProtocolVersion = "1.0.0"
	// SignalSchemaVersion is the currently supported inbound signal version.
	SignalSchemaVersion = 1
)

// Signal types the recorder understands.
const (
	TypeSelfCompleted = "self-instrument-completed"
	TypeTeamCompleted = "team-instrument-completed"
	TypeIntake        = "intake-submitted"
)

// Signal is one notification posted by an instrument surface.
type Signal struct {
	Version      int             `json:"version"`
	SignalID     string          `json:"signal_id"`
	Type         string          `json:"type"`
	InstrumentID string          `json:"instrument_id"`
	ClientTime   time.Time       `json:"client_time"`
	ServerTime   time.Time       `json:"server_time"`
	Payload      json.RawMessage `json:"payload"`
}

// Normalize applies defaults and canonical formatting before validation.
func (s *Signal) Normalize() {
	if s == nil {
		return
	}
	if s.Version == 0 {
		s.Version = SignalSchemaVersion
	}
	s.SignalID = strings.TrimSpace(s.SignalID)
	s.Type = strings.TrimSpace(s.Type)
	s.InstrumentID = strings.TrimSpace(s.InstrumentID)
}

// StampServerTime overwrites ServerTime with the supplied clock reading (UTC).
func (s *Signal) StampServerTime(now time.Time) {
	if s == nil {
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	s.ServerTime = now.UTC()
}

// Validate enforces baseline schema requirements for incoming signals.
func (s Signal) Validate() error {
	if s.Version != SignalSchemaVersion {
		return fmt.Errorf("version %d not supported", s.Version)
	}
	if s.SignalID == "" {
		return errors.New("signal_id is required")
	}
	switch s.Type {
	case TypeSelfCompleted, TypeTeamCompleted:
		if s.InstrumentID == "" {
			return errors.New("instrument_id is required for completion signals")
		}
	case TypeIntake:
		if len(s.Payload) == 0 {
			return errors.New("payload is required for intake signals")
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("type %q not supported", s.Type)
	}
	return nil
}

// Processor consumes validated signals.
type Processor interface {
	HandleSignal(Signal) error
}

// ProcessorFunc adapts a function into a Processor.
type ProcessorFunc func(Signal) error

// HandleSignal executes f(s).
func (f ProcessorFunc) HandleSignal(s Signal) error {
	if f == nil {
		return nil
	}
	return f(s)
}

// Logger records receiver status information.
type Logger interface {
	Printf(format string, args ...any)
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type signalResponse struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"server_time"`
}
