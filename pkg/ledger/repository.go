package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository persists run events. A nil *Repository is a valid no-op so
// the worker can run sheet-only when postgres is not configured.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.AutoMigrate(&RunEvent{})
}

func (r *Repository) Append(ctx context.Context, ev *RunEvent) error {
	if r == nil || r.db == nil {
		return nil
	}
	ev.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(ev).Error
}

// ProcessedSet materializes the set of record keys with a record_marked
// event. Records in this set are never re-derived, even if the sheet's
// processed column was wiped.
func (r *Repository) ProcessedSet(ctx context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if r == nil || r.db == nil {
		return set, nil
	}

	var keys []string
	err := r.db.WithContext(ctx).Model(&RunEvent{}).
		Where("stage = ?", StageRecordMarked).
		Distinct("record_key").
		Pluck("record_key", &keys).Error
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// EventsForRun returns a run's events in append order.
func (r *Repository) EventsForRun(ctx context.Context, runID string) ([]RunEvent, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	var events []RunEvent
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&events).Error
	return events, err
}
