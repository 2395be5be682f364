package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/privacyops/dsarflow/pkg/audit"
	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/dsar"
	"github.com/privacyops/dsarflow/pkg/fanout"
	"github.com/privacyops/dsarflow/pkg/ledger"
	"github.com/privacyops/dsarflow/pkg/provision"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

// Deps wires the orchestrator's collaborators. Ledger and Lock may be
// nil; the run is then sheet-only and unguarded.
type Deps struct {
	Sheets        sheetstore.Tabular
	IntakeSheetID string
	Pool          *provision.Pool
	Distributor   *fanout.Distributor
	Targets       []fanout.Target
	Audit         *audit.Sink
	Ledger        *ledger.Repository
	Lock          *RunLock
	Policy        InvalidPolicy
}

// Result is one run's outcome. State is the terminal state; Err carries
// the cause for Invalid and Aborted.
type Result struct {
	RunID         string
	State         State
	Unprocessed   int
	Processed     int
	Skipped       int
	ProvisionErrs []error
	FanOutErrs    []fanout.TargetError
	Err           error
}

type Orchestrator struct {
	sheets        sheetstore.Tabular
	intakeSheetID string
	pool          *provision.Pool
	distributor   *fanout.Distributor
	targets       []fanout.Target
	auditor       *audit.Sink
	events        *ledger.Repository
	lock          *RunLock
	policy        InvalidPolicy
	now           func() time.Time
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		sheets:        deps.Sheets,
		intakeSheetID: deps.IntakeSheetID,
		pool:          deps.Pool,
		distributor:   deps.Distributor,
		targets:       deps.Targets,
		auditor:       deps.Audit,
		events:        deps.Ledger,
		lock:          deps.Lock,
		policy:        deps.Policy,
		now:           time.Now,
	}
}

func (o *Orchestrator) timestamp() string {
	return o.now().Format(audit.TimestampLayout)
}

// audit appends to the operator log. The sink is the error channel, not
// a run dependency: a failed append is logged and the run continues.
func (o *Orchestrator) audit(ctx context.Context, message string) {
	if o.auditor == nil {
		return
	}
	if err := o.auditor.Record(ctx, message); err != nil {
		logger.Log.WithError(err).Warn("audit append failed")
	}
}

func (o *Orchestrator) logEvent(ctx context.Context, runID, recordKey, stage string, detail map[string]interface{}) {
	if err := o.events.Append(ctx, ledger.NewEvent(runID, recordKey, stage, detail)); err != nil {
		logger.Log.WithError(err).WithField("stage", stage).Warn("ledger append failed")
	}
}

func (o *Orchestrator) recordKey(row int) string {
	return fmt.Sprintf("intake:%s:row:%d", o.intakeSheetID, row)
}

func (o *Orchestrator) finish(ctx context.Context, res *Result) *Result {
	o.audit(ctx, "Process Finished at "+o.timestamp())
	o.audit(ctx, "***************")
	o.logEvent(ctx, res.RunID, "", ledger.StageRunFinished, map[string]interface{}{
		"state":     res.State.String(),
		"processed": res.Processed,
		"skipped":   res.Skipped,
	})
	return res
}

// Run executes one full pipeline pass: fetch, validate, provision, mark,
// fan out. It never panics across a partial batch; every failure path
// lands in a terminal state with the cause recorded.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	res := &Result{RunID: uuid.New().String(), State: StateIdle}

	if err := o.lock.Acquire(ctx, res.RunID); err != nil {
		res.State = StateAborted
		res.Err = err
		return res
	}
	defer o.lock.Release(context.WithoutCancel(ctx), res.RunID)

	o.audit(ctx, "Process Started")
	o.logEvent(ctx, res.RunID, "", ledger.StageRunStarted, nil)

	res.State = StateFetching
	rows, err := o.sheets.ReadAll(ctx, o.intakeSheetID)
	if err != nil {
		res.State = StateAborted
		res.Err = fmt.Errorf("reading intake sheet: %w", err)
		o.audit(ctx, "Could Not Read Intake Sheet: "+err.Error())
		return o.finish(ctx, res)
	}

	processedSet, err := o.events.ProcessedSet(ctx)
	if err != nil {
		res.State = StateAborted
		res.Err = fmt.Errorf("materializing processed set: %w", err)
		return o.finish(ctx, res)
	}

	var pending []sheetstore.Row
	for _, row := range rows {
		if strings.TrimSpace(row.Values[dsar.HeaderProcessed]) != "" {
			continue
		}
		if _, done := processedSet[o.recordKey(row.Index)]; done {
			continue
		}
		pending = append(pending, row)
	}

	if len(pending) == 0 {
		res.State = StateNoWork
		o.audit(ctx, "No New SARs...Up to date")
		return o.finish(ctx, res)
	}
	res.Unprocessed = len(pending)

	processedCol := pending[0].Column(dsar.HeaderProcessed)
	if processedCol == 0 {
		res.State = StateAborted
		res.Err = fmt.Errorf("intake sheet has no %q column", dsar.HeaderProcessed)
		o.audit(ctx, "Intake Sheet Missing Processed Column")
		return o.finish(ctx, res)
	}

	res.State = StateValidating
	records, invalidErr := o.validate(ctx, res, pending)
	if invalidErr != nil {
		res.State = StateInvalid
		res.Err = invalidErr
		o.audit(ctx, "Inconsistent Data...Fields missing")
		return o.finish(ctx, res)
	}
	o.audit(ctx, fmt.Sprintf("New SARs: %d", len(records)))

	res.State = StateProvisioning
	marked := o.provisionAndMark(ctx, res, records, processedCol)
	cancelled := res.Err

	// Records marked this run must fan out now or never: their marker
	// makes every later run skip them. On cancellation the fan-out runs
	// on a detached context, like an in-progress case request.
	if len(marked) > 0 {
		res.State = StateFanningOut
		fanCtx := ctx
		if ctx.Err() != nil {
			fanCtx = context.WithoutCancel(ctx)
		}
		o.fanOut(fanCtx, res, marked)
	}

	switch {
	case cancelled != nil:
		res.State = StateAborted
		res.Err = cancelled
	case len(res.ProvisionErrs) > 0:
		res.State = StateAborted
		res.Err = res.ProvisionErrs[0]
	default:
		res.State = StateDone
	}
	return o.finish(ctx, res)
}

// validate checks the whole pending batch before any provisioning. Under
// PolicyAbort the first failure poisons the run with zero mutating calls
// performed; under PolicySkip the failing records are dropped and logged.
func (o *Orchestrator) validate(ctx context.Context, res *Result, pending []sheetstore.Row) ([]dsar.IntakeRecord, error) {
	var records []dsar.IntakeRecord
	for _, row := range pending {
		rec, err := dsar.ParseRecord(row.Index, row.Values)
		if err == nil {
			err = dsar.CheckConsistency(rec)
		}
		if err != nil {
			o.logEvent(ctx, res.RunID, o.recordKey(row.Index), ledger.StageInvalid, map[string]interface{}{
				"reason": err.Error(),
			})
			if o.policy == PolicyAbort {
				return nil, err
			}
			o.audit(ctx, fmt.Sprintf("Skipping Inconsistent Record At Row %d: %v", row.Index, err))
			res.Skipped++
			continue
		}
		records = append(records, rec)
	}
	o.logEvent(ctx, res.RunID, "", ledger.StageValidated, map[string]interface{}{
		"valid":   len(records),
		"skipped": res.Skipped,
	})
	return records, nil
}

// provisionAndMark walks records in original row order. Each record's
// sub-cases are provisioned (possibly in parallel) and the record is
// marked processed immediately after all of them succeed. A failed
// record stays unmarked so the next run retries it; its partial
// artifacts are left in place.
func (o *Orchestrator) provisionAndMark(ctx context.Context, res *Result, records []dsar.IntakeRecord, processedCol int) []dsar.IntakeRecord {
	var marked []dsar.IntakeRecord

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			res.State = StateAborted
			res.Err = err
			o.audit(ctx, "Process Cancelled")
			return marked
		}

		cases := dsar.DeriveCases(rec)
		for _, c := range cases {
			o.audit(ctx, "Creating Folder And Summary Template For "+c.Reference())
		}

		failed := false
		for _, pr := range o.pool.ProvisionAll(ctx, cases) {
			ref := pr.Request.Reference()
			if pr.Err != nil {
				failed = true
				res.ProvisionErrs = append(res.ProvisionErrs, pr.Err)
				o.audit(ctx, fmt.Sprintf("Provisioning Failed For %s: %v", ref, pr.Err))
				o.logEvent(ctx, res.RunID, o.recordKey(rec.Row), ledger.StageProvisionFail, map[string]interface{}{
					"reference": ref,
					"error":     pr.Err.Error(),
				})
				continue
			}
			o.audit(ctx, "Writing Header Info For "+ref)
			o.logEvent(ctx, res.RunID, o.recordKey(rec.Row), ledger.StageProvisioned, map[string]interface{}{
				"reference": ref,
				"folder_id": pr.Artifact.FolderID,
				"doc_id":    pr.Artifact.DocumentID,
			})
		}
		if failed {
			continue
		}

		res.State = StateMarkingProcessed
		markValue := "Processed " + o.timestamp()
		if err := o.sheets.WriteCell(ctx, o.intakeSheetID, rec.Row, processedCol, markValue); err != nil {
			res.ProvisionErrs = append(res.ProvisionErrs, fmt.Errorf("marking row %d: %w", rec.Row, err))
			o.audit(ctx, fmt.Sprintf("Could Not Mark Row %d Processed: %v", rec.Row, err))
			continue
		}
		o.logEvent(ctx, res.RunID, o.recordKey(rec.Row), ledger.StageRecordMarked, map[string]interface{}{
			"row": rec.Row,
		})

		marked = append(marked, rec)
		res.Processed++
		res.State = StateProvisioning
	}
	return marked
}

// fanOut runs once over everything marked this run. Target failures are
// isolated and recorded; a missed target never fails the run.
func (o *Orchestrator) fanOut(ctx context.Context, res *Result, marked []dsar.IntakeRecord) {
	o.audit(ctx, "Filling Input Sheets")

	var entries []fanout.Entry
	for _, rec := range marked {
		for _, c := range dsar.DeriveCases(rec) {
			entries = append(entries, fanout.EntryFromCase(c))
		}
	}

	res.FanOutErrs = o.distributor.Distribute(ctx, o.targets, entries)
	for _, f := range res.FanOutErrs {
		o.audit(ctx, fmt.Sprintf("Input Sheet Failed For %s: %v", f.Target, f.Err))
		o.logEvent(ctx, res.RunID, "", ledger.StageFanOutFail, map[string]interface{}{
			"target": f.Target,
			"error":  f.Err.Error(),
		})
	}
	o.logEvent(ctx, res.RunID, "", ledger.StageFanOut, map[string]interface{}{
		"entries": len(entries),
		"targets": len(o.targets),
		"failed":  len(res.FanOutErrs),
	})
}
