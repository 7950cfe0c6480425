package signals

import (
	"encoding/json"
	"fmt"

	"github.com/kingrea/lodestar/internal/store"
)

// Recorder is the Processor that persists incoming signals into the local
// record store. Completion signals write the boolean flags the phase
// deriver reads; intake signals replace the latest behaviors submission.
type Recorder struct {
	records *store.Records
	logger  Logger
}

// NewRecorder builds a recorder over the given record repository.
func NewRecorder(records *store.Records, logger Logger) *Recorder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Recorder{records: records, logger: logger}
}

// HandleSignal applies one validated signal to the store.
func (r *Recorder) HandleSignal(sig Signal) error {
	switch sig.Type {
	case TypeSelfCompleted:
		if err := r.records.MarkSelfCompleted(sig.InstrumentID); err != nil {
			return fmt.Errorf("signals: record self completion: %w", err)
		}
		r.logger.Printf("self instrument %s completed", sig.InstrumentID)
		return nil

	case TypeTeamCompleted:
		if err := r.records.MarkTeamCompleted(); err != nil {
			return fmt.Errorf("signals: record team completion: %w", err)
		}
		r.logger.Printf("team instrument %s completed", sig.InstrumentID)
		return nil

	case TypeIntake:
		var payload map[string]any
		if err := json.Unmarshal(sig.Payload, &payload); err != nil {
			return fmt.Errorf("signals: decode intake payload: %w", err)
		}
		if err := r.records.SetIntakeLatest(payload); err != nil {
			return fmt.Errorf("signals: record intake: %w", err)
		}
		r.logger.Printf("intake submission recorded")
		return nil
	}
	return fmt.Errorf("signals: unhandled type %q", sig.Type)
}
