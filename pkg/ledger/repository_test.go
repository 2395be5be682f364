package ledger

import (
	"context"
	"testing"
)

func TestNilRepositoryIsNoOp(t *testing.T) {
	var repo *Repository

	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Append(context.Background(), &RunEvent{Stage: StageRunStarted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set, err := repo.ProcessedSet(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty processed set, got %d entries", len(set))
	}

	events, err := repo.EventsForRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events != nil {
		t.Fatalf("expected no events, got %v", events)
	}
}
