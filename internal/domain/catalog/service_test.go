package catalog

import (
	"context"
	"errors"
	"testing"
)

/* =========================
   bumpCounter
   ========================= */

func TestBumpCounterRetriesOnce(t *testing.T) {
	svc := &Service{}
	calls := 0
	inc := func(context.Context, string) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}

	svc.bumpCounter(context.Background(), "task", "t1", inc)
	if calls != 2 {
		t.Fatalf("expected retry after failure, got %d calls", calls)
	}
}

func TestBumpCounterStopsWhenContextDone(t *testing.T) {
	svc := &Service{}
	calls := 0
	inc := func(context.Context, string) error {
		calls++
		return errors.New("down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.bumpCounter(ctx, "ad", "a1", inc)
	if calls != 1 {
		t.Fatalf("cancelled context must skip the retry, got %d calls", calls)
	}
}
