package history

import (
	"context"
	"testing"
)

func TestInMemoryStoreSaveAndRecent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for _, style := range []string{"natural", "debate", "podcast"} {
		if err := store.SaveRun(ctx, RunRecord{Style: style, SpeakerCount: 2}); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", style, err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Style != "podcast" || runs[1].Style != "debate" {
		t.Fatalf("order = [%s %s], want newest first", runs[0].Style, runs[1].Style)
	}
	for _, r := range runs {
		if r.ID == "" {
			t.Fatal("record missing generated ID")
		}
		if r.CreatedAt.IsZero() {
			t.Fatal("record missing timestamp")
		}
	}
}

func TestInMemoryStoreEmptyRecent(t *testing.T) {
	runs, err := NewInMemoryStore().Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("runs = %d, want 0", len(runs))
	}
}

func TestInMemoryStoreLimitClamped(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.SaveRun(context.Background(), RunRecord{Style: "casual"}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	runs, err := store.Recent(context.Background(), 50)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
}
