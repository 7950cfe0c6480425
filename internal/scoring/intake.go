package scoring

import "encoding/json"

// intakePayload is the subset of the behaviors intake submission the
// aggregator understands. The intake surface stores more than this; extra
// fields pass through untouched.
type intakePayload struct {
	RespondentID string         `json:"respondentId"`
	InstrumentID string         `json:"instrumentId"`
	Answers      map[int]Rating `json:"answers"`
}

// RecordFromIntake converts a stored intake submission into a RatingRecord.
// ok is false when the payload carries no parseable answers; a malformed
// payload is missing data, not an error.
func RecordFromIntake(payload map[string]any) (RatingRecord, bool) {
	if payload == nil {
		return RatingRecord{}, false
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return RatingRecord{}, false
	}
	var intake intakePayload
	if err := json.Unmarshal(raw, &intake); err != nil {
		return RatingRecord{}, false
	}
	if len(intake.Answers) == 0 {
		return RatingRecord{}, false
	}
	return RatingRecord{
		RespondentID: intake.RespondentID,
		InstrumentID: intake.InstrumentID,
		Answers:      intake.Answers,
	}, true
}
