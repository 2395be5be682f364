package ledger

import (
	"time"

	"gorm.io/datatypes"
)

// Event stages recorded per run.
const (
	StageRunStarted    = "run_started"
	StageRunFinished   = "run_finished"
	StageValidated     = "batch_validated"
	StageInvalid       = "record_invalid"
	StageProvisioned   = "case_provisioned"
	StageProvisionFail = "case_provision_failed"
	StageRecordMarked  = "record_marked"
	StageFanOut        = "fan_out"
	StageFanOutFail    = "fan_out_failed"
)

// RunEvent is one append-only row of the run ledger. The ledger is the
// durable history the spreadsheet's processed column cannot provide: the
// processed set is materialized from record_marked events, never mutated
// in place.
type RunEvent struct {
	ID        uint              `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	RunID     string            `json:"run_id" gorm:"column:run_id;index"`
	RecordKey string            `json:"record_key" gorm:"column:record_key;index"`
	Stage     string            `json:"stage" gorm:"column:stage"`
	Detail    datatypes.JSONMap `json:"detail" gorm:"column:detail"`
	CreatedAt time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (RunEvent) TableName() string {
	return "run_events"
}

// NewEvent builds a RunEvent; detail may be nil.
func NewEvent(runID, recordKey, stage string, detail map[string]interface{}) *RunEvent {
	return &RunEvent{
		RunID:     runID,
		RecordKey: recordKey,
		Stage:     stage,
		Detail:    datatypes.JSONMap(detail),
	}
}
