package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/subscription"
)

/* =========================
   Fakes
   ========================= */

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type fakeLedger struct {
	acc  *account.Account
	refs map[string]bool
	txns []account.Transaction
}

func (f *fakeLedger) Mutate(_ context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error) {
	if id != f.acc.ID {
		return nil, account.ErrAccountNotFound
	}
	cp := *f.acc
	txn, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	if txn != nil && txn.Reference.Valid {
		if f.refs[txn.Reference.String] {
			return nil, account.ErrDuplicateReference
		}
		f.refs[txn.Reference.String] = true
	}
	if txn != nil {
		f.txns = append(f.txns, *txn)
	}
	*f.acc = cp
	out := cp
	return &out, nil
}

type fakeStore struct {
	records []subscription.Record
	seen    map[string]bool
}

func (f *fakeStore) InsertRecord(_ context.Context, rec *subscription.Record) error {
	if f.seen[rec.PaymentRef] {
		return subscription.ErrAlreadyProcessed
	}
	f.seen[rec.PaymentRef] = true
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeStore) ListByAccount(_ context.Context, accountID uuid.UUID, _ int) ([]subscription.Record, error) {
	var out []subscription.Record
	for _, rec := range f.records {
		if rec.AccountID == accountID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	calls int
	after account.Account
}

func (f *fakeNotifier) Notify(_ context.Context, _, after *account.Account) {
	f.calls++
	f.after = *after
}

func setup(t *testing.T) (*subscription.Service, *fakeLedger, *fakeStore, *fakeNotifier, *account.Account) {
	t.Helper()
	acc := &account.Account{
		ID:        uuid.New(),
		Balance:   decimal.NewFromFloat(20.00),
		SubPlanID: "free",
	}
	ledger := &fakeLedger{acc: acc, refs: map[string]bool{}}
	store := &fakeStore{seen: map[string]bool{}}
	clk := &fakeClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	notifier := &fakeNotifier{}
	svc := subscription.NewService(store, ledger, nil, clk, notifier)
	return svc, ledger, store, notifier, acc
}

/* =========================
   Tests
   ========================= */

func TestSettlePaymentActivatesPlan(t *testing.T) {
	svc, ledger, store, notifier, acc := setup(t)
	amount := decimal.NewFromInt(199)

	err := svc.SettlePayment(context.Background(), acc.ID, subscription.PlanGold, "pay_abc123", amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.SubPlanID != "gold" || acc.SubStatus != account.SubStatusActive {
		t.Fatalf("subscription not activated: %+v", acc)
	}
	if !acc.SubExpiresAt.Valid {
		t.Fatal("expiry not set")
	}
	wantExpiry := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	if !acc.SubExpiresAt.Time.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, acc.SubExpiresAt.Time)
	}

	// The price moved through the gateway, not the ledger balance.
	if acc.Balance.StringFixed(2) != "20.00" {
		t.Fatalf("balance must be untouched, got %s", acc.Balance)
	}
	if len(ledger.txns) != 1 {
		t.Fatalf("expected one transaction, got %d", len(ledger.txns))
	}
	txn := ledger.txns[0]
	if txn.Type != account.TransactionTypeDebit || txn.Description != "GOLD Plan Subscription" {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
	if len(store.records) != 1 || store.records[0].PlanID != "gold" {
		t.Fatalf("history record missing: %+v", store.records)
	}
	if notifier.calls != 1 || notifier.after.SubPlanID != "gold" {
		t.Fatalf("expected one fraud notification with gold plan, got calls=%d plan=%s", notifier.calls, notifier.after.SubPlanID)
	}
}

func TestSettlePaymentIdempotentOnRedelivery(t *testing.T) {
	svc, ledger, store, notifier, acc := setup(t)
	amount := decimal.NewFromInt(99)

	if err := svc.SettlePayment(context.Background(), acc.ID, subscription.PlanSilver, "pay_dup", amount); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.SettlePayment(context.Background(), acc.ID, subscription.PlanSilver, "pay_dup", amount); err != nil {
		t.Fatalf("redelivery must settle as success: %v", err)
	}

	if len(ledger.txns) != 1 {
		t.Fatalf("redelivery appended a transaction: %d", len(ledger.txns))
	}
	if len(store.records) != 1 {
		t.Fatalf("redelivery appended a record: %d", len(store.records))
	}
	if notifier.calls != 1 {
		t.Fatalf("redelivery must not notify again, got %d", notifier.calls)
	}
}

func TestHistoryListsOwnRecords(t *testing.T) {
	svc, _, _, _, acc := setup(t)

	if err := svc.SettlePayment(context.Background(), acc.ID, subscription.PlanGold, "pay_hist", decimal.NewFromInt(199)); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	recs, err := svc.History(context.Background(), acc.ID, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].PaymentRef != "pay_hist" {
		t.Fatalf("unexpected history: %+v", recs)
	}

	other, err := svc.History(context.Background(), uuid.New(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("history leaked across accounts: %+v", other)
	}
}

func TestSettlePaymentRejectsBadPlans(t *testing.T) {
	svc, _, _, _, acc := setup(t)

	err := svc.SettlePayment(context.Background(), acc.ID, subscription.PlanID("diamond"), "pay_x", decimal.NewFromInt(10))
	if !errors.Is(err, subscription.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	err = svc.SettlePayment(context.Background(), acc.ID, subscription.PlanFree, "pay_y", decimal.Zero)
	if !errors.Is(err, subscription.ErrPlanNotPayable) {
		t.Fatalf("expected ErrPlanNotPayable, got %v", err)
	}
}
