package fraud_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/fraud"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type fakeLedger struct {
	acc *account.Account
}

func (f *fakeLedger) Mutate(_ context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error) {
	if id != f.acc.ID {
		return nil, account.ErrAccountNotFound
	}
	if _, err := fn(f.acc); err != nil {
		return nil, err
	}
	return f.acc, nil
}

type fakeStore struct {
	entries []fraud.LogEntry
}

func (f *fakeStore) InsertLog(_ context.Context, e *fraud.LogEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func newMonitor(acc *account.Account) (*fraud.Monitor, *fakeStore) {
	store := &fakeStore{}
	clk := &fakeClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	mon := fraud.NewMonitor(&fakeLedger{acc: acc}, store, clk, decimal.NewFromInt(50), 3)
	return mon, store
}

func TestNotifyFlagsRapidBalanceIncrease(t *testing.T) {
	acc := &account.Account{ID: uuid.New(), Balance: decimal.NewFromFloat(80.00)}
	before := *acc
	before.Balance = decimal.NewFromFloat(10.00)

	mon, store := newMonitor(acc)
	mon.Notify(context.Background(), &before, acc)

	if acc.FraudCount != 1 {
		t.Fatalf("expected fraud count 1, got %d", acc.FraudCount)
	}
	if len(acc.FraudReasons) != 1 || acc.FraudReasons[0] != fraud.ReasonRapidBalance {
		t.Fatalf("unexpected reasons: %v", acc.FraudReasons)
	}
	if !acc.FraudLastChecked.Valid {
		t.Fatal("last checked not stamped")
	}
	if len(store.entries) != 1 || store.entries[0].Reason != fraud.ReasonRapidBalance {
		t.Fatalf("audit log missing: %+v", store.entries)
	}
}

func TestNotifyFlagsTooManyDevices(t *testing.T) {
	acc := &account.Account{
		ID:        uuid.New(),
		DeviceIDs: []string{"d1", "d2", "d3", "d4"},
	}
	before := *acc
	before.DeviceIDs = []string{"d1", "d2", "d3"}

	mon, store := newMonitor(acc)
	mon.Notify(context.Background(), &before, acc)

	if len(acc.FraudReasons) != 1 || acc.FraudReasons[0] != fraud.ReasonMultipleDevices {
		t.Fatalf("unexpected reasons: %v", acc.FraudReasons)
	}
	if store.entries[0].DeviceCount != 4 {
		t.Fatalf("expected device count 4, got %d", store.entries[0].DeviceCount)
	}
}

func TestNotifyIgnoresOrdinaryMutations(t *testing.T) {
	acc := &account.Account{ID: uuid.New(), Balance: decimal.NewFromFloat(12.00)}
	before := *acc
	before.Balance = decimal.NewFromFloat(10.00)

	mon, store := newMonitor(acc)
	mon.Notify(context.Background(), &before, acc)

	if acc.FraudCount != 0 || len(store.entries) != 0 {
		t.Fatalf("ordinary credit must not flag: count=%d entries=%d", acc.FraudCount, len(store.entries))
	}
}

func TestNotifyDeduplicatesReasons(t *testing.T) {
	acc := &account.Account{ID: uuid.New(), Balance: decimal.NewFromFloat(100.00)}
	before := *acc
	before.Balance = decimal.Zero

	mon, _ := newMonitor(acc)
	mon.Notify(context.Background(), &before, acc)

	// Same pattern again; the reason set must not grow.
	second := *acc
	second.Balance = decimal.NewFromFloat(200.00)
	mon.Notify(context.Background(), &before, &second)

	if len(acc.FraudReasons) != 1 {
		t.Fatalf("expected one deduplicated reason, got %v", acc.FraudReasons)
	}
	if acc.FraudCount != 2 {
		t.Fatalf("expected fraud count 2, got %d", acc.FraudCount)
	}
}
