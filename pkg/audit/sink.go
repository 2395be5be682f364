package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/privacyops/dsarflow/pkg/common/kafka"
	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

// TimestampLayout is the day-first format operators read on the audit
// sheet and in processed markers.
const TimestampLayout = "02/01/06 15:04:05"

// Sink is the append-only operator log. Each event lands as one
// (timestamp, message) row on the audit sheet. Operators work from the
// sheet; the optional Kafka mirror is best effort and never fails a
// Record call on its own.
type Sink struct {
	sheets  sheetstore.Tabular
	sheetID string
	mirror  *kafka.Producer
	now     func() time.Time
}

func NewSink(sheets sheetstore.Tabular, sheetID string) *Sink {
	return &Sink{sheets: sheets, sheetID: sheetID, now: time.Now}
}

// WithMirror attaches a Kafka producer that receives a copy of every
// audit event.
func (s *Sink) WithMirror(p *kafka.Producer) *Sink {
	s.mirror = p
	return s
}

func (s *Sink) Record(ctx context.Context, message string) error {
	ts := s.now().Format(TimestampLayout)

	if s.mirror != nil {
		if err := s.mirror.PublishEvent(ctx, "audit", "dsar-pipeline", map[string]interface{}{
			"message": message,
			"at":      ts,
		}); err != nil {
			logger.Log.WithError(err).Warn("audit mirror publish failed")
		}
	}

	if _, err := s.sheets.AppendRow(ctx, s.sheetID, []string{ts, message}); err != nil {
		return fmt.Errorf("appending audit row: %w", err)
	}
	return nil
}

func (s *Sink) Recordf(ctx context.Context, format string, args ...interface{}) error {
	return s.Record(ctx, fmt.Sprintf(format, args...))
}
