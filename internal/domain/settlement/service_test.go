package settlement_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/catalog"
	"github.com/earnzy/earnzy-api/internal/domain/quota"
	"github.com/earnzy/earnzy-api/internal/domain/settlement"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

/* =========================
   Fakes
   ========================= */

type fakeClock struct {
	now time.Time
	loc *time.Location
}

func newFakeClock(now time.Time) *fakeClock {
	loc, _ := time.LoadLocation(clock.DefaultTimezone)
	return &fakeClock{now: now.In(loc), loc: loc}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) DayOf(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

type fakeLedger struct {
	acc  *account.Account
	refs map[string]bool
	txns []account.Transaction
}

func newFakeLedger(acc *account.Account) *fakeLedger {
	return &fakeLedger{acc: acc, refs: map[string]bool{}}
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

type fakeCatalog struct {
	tasks     map[string]*catalog.Task
	ads       map[string]*catalog.Ad
	taskBumps []string
	adBumps   []string
}

func (f *fakeCatalog) GetActiveTask(_ context.Context, id string) (*catalog.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, catalog.ErrTaskNotFound
	}
	if !t.Active {
		return nil, fmt.Errorf("%w: task %s", catalog.ErrInactive, id)
	}
	return t, nil
}

func (f *fakeCatalog) GetActiveAd(_ context.Context, id string) (*catalog.Ad, error) {
	a, ok := f.ads[id]
	if !ok {
		return nil, catalog.ErrAdNotFound
	}
	return a, nil
}

func (f *fakeCatalog) RecordTaskCompleted(_ context.Context, id string) {
	f.taskBumps = append(f.taskBumps, id)
}

func (f *fakeCatalog) RecordAdWatched(_ context.Context, id string) {
	f.adBumps = append(f.adBumps, id)
}

type fakeNotifier struct {
	calls int
	jump  decimal.Decimal
}

func (f *fakeNotifier) Notify(_ context.Context, before, after *account.Account) {
	f.calls++
	f.jump = after.Balance.Sub(before.Balance)
}

/* =========================
   Fixtures
   ========================= */

var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func goldAccount() *account.Account {
	return &account.Account{
		ID:        uuid.New(),
		Balance:   decimal.NewFromFloat(10.00),
		SubPlanID: "gold",
		SubStatus: account.SubStatusActive,
		SubExpiresAt: sql.NullTime{
			Time:  testNow.AddDate(0, 0, 20),
			Valid: true,
		},
	}
}

func freeAccount() *account.Account {
	return &account.Account{ID: uuid.New(), SubPlanID: "free"}
}

func newService(acc *account.Account, cat *fakeCatalog, rng func() float64) (*settlement.Service, *fakeLedger, *fakeNotifier) {
	ledger := newFakeLedger(acc)
	notifier := &fakeNotifier{}
	clk := newFakeClock(testNow)
	svc := settlement.NewService(ledger, cat, notifier, quota.Limits{}, clk, rng)
	return svc, ledger, notifier
}

/* =========================
   Tasks and ads
   ========================= */

func TestTaskSettlementAppliesGoldMultiplier(t *testing.T) {
	acc := goldAccount()
	cat := &fakeCatalog{tasks: map[string]*catalog.Task{
		"t1": {ID: "t1", Title: "Install App", BaseReward: decimal.NewFromFloat(5.00), Active: true},
	}}
	svc, ledger, notifier := newService(acc, cat, nil)

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Reward.StringFixed(2) != "6.50" {
		t.Fatalf("expected reward 6.50, got %s", res.Reward)
	}
	if res.NewBalance.StringFixed(2) != "16.50" {
		t.Fatalf("expected balance 16.50, got %s", res.NewBalance)
	}
	if acc.TasksCompletedToday != 1 || acc.TotalTasksCompleted != 1 {
		t.Fatalf("task counters not bumped: %+v", acc)
	}
	if len(ledger.txns) != 1 || ledger.txns[0].Description != "Task: Install App" {
		t.Fatalf("unexpected transaction: %+v", ledger.txns)
	}
	if !ledger.txns[0].TaskID.Valid || ledger.txns[0].TaskID.String != "t1" {
		t.Fatal("transaction missing task ref")
	}
	if len(cat.taskBumps) != 1 {
		t.Fatal("catalog counter not recorded")
	}
	if notifier.calls != 1 || notifier.jump.StringFixed(2) != "6.50" {
		t.Fatalf("notifier not invoked with snapshots: %+v", notifier)
	}
}

func TestAdSettlementFreeTier(t *testing.T) {
	acc := freeAccount()
	cat := &fakeCatalog{ads: map[string]*catalog.Ad{
		"a1": {ID: "a1", Title: "Promo Video", BaseReward: decimal.NewFromFloat(0.50), Active: true},
	}}
	svc, ledger, _ := newService(acc, cat, nil)

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindAd, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reward.StringFixed(2) != "0.50" {
		t.Fatalf("expected reward 0.50, got %s", res.Reward)
	}
	if acc.AdsWatchedToday != 1 {
		t.Fatal("ad counter not bumped")
	}
	if ledger.txns[0].Description != "Ad: Promo Video" {
		t.Fatalf("unexpected description %q", ledger.txns[0].Description)
	}
}

func TestTaskSettlementUnknownItem(t *testing.T) {
	acc := freeAccount()
	svc, _, _ := newService(acc, &fakeCatalog{tasks: map[string]*catalog.Task{}}, nil)

	_, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "nope")
	if !errors.Is(err, catalog.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	_, err = svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "")
	if !errors.Is(err, settlement.ErrMissingItemID) {
		t.Fatalf("expected ErrMissingItemID, got %v", err)
	}
}

func TestInactiveTaskRejected(t *testing.T) {
	acc := freeAccount()
	cat := &fakeCatalog{tasks: map[string]*catalog.Task{
		"t1": {ID: "t1", Title: "Old Task", BaseReward: decimal.NewFromFloat(1), Active: false},
	}}
	svc, _, _ := newService(acc, cat, nil)

	_, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "t1")
	if !errors.Is(err, catalog.ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

/* =========================
   Check-ins
   ========================= */

func TestCheckinStreakContinuation(t *testing.T) {
	acc := freeAccount()
	acc.StreakDay = 6
	acc.LongestStreak = 6
	acc.LastCheckinAt = sql.NullTime{Time: testNow.AddDate(0, 0, -1), Valid: true}
	svc, ledger, _ := newService(acc, &fakeCatalog{}, nil)

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindCheckin, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.StreakDay != 7 {
		t.Fatalf("expected streak day 7, got %d", res.StreakDay)
	}
	if res.Reward.StringFixed(2) != "0.50" {
		t.Fatalf("expected day-7 reward 0.50, got %s", res.Reward)
	}
	if acc.LongestStreak != 7 || acc.TotalCheckins != 1 {
		t.Fatalf("streak bookkeeping wrong: %+v", acc)
	}
	if ledger.txns[0].Description != "Daily Check-in (Day 7)" {
		t.Fatalf("unexpected description %q", ledger.txns[0].Description)
	}
	if !ledger.txns[0].Reference.Valid {
		t.Fatal("check-in transaction must carry a daily reference")
	}
}

func TestCheckinStreakResetsAfterGap(t *testing.T) {
	acc := freeAccount()
	acc.StreakDay = 10
	acc.LongestStreak = 10
	acc.LastCheckinAt = sql.NullTime{Time: testNow.AddDate(0, 0, -3), Valid: true}
	svc, _, _ := newService(acc, &fakeCatalog{}, nil)

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindCheckin, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StreakDay != 1 {
		t.Fatalf("expected streak reset to 1, got %d", res.StreakDay)
	}
	if res.Reward.StringFixed(2) != "0.20" {
		t.Fatalf("expected day-1 reward 0.20, got %s", res.Reward)
	}
	if acc.LongestStreak != 10 {
		t.Fatal("longest streak must survive the reset")
	}
}

func TestSecondCheckinSameDayRejected(t *testing.T) {
	acc := freeAccount()
	svc, _, _ := newService(acc, &fakeCatalog{}, nil)

	if _, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindCheckin, ""); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}
	_, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindCheckin, "")
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if acc.TotalCheckins != 1 {
		t.Fatalf("expected exactly one check-in, got %d", acc.TotalCheckins)
	}
}

/* =========================
   Scratch cards
   ========================= */

func TestScratchCapEnforced(t *testing.T) {
	acc := freeAccount()
	svc, _, _ := newService(acc, &fakeCatalog{}, func() float64 { return 0.5 })

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindScratch, "")
	if err != nil {
		t.Fatalf("first scratch failed: %v", err)
	}
	if res.Reward.StringFixed(2) != "0.30" {
		t.Fatalf("expected mid-range 0.30, got %s", res.Reward)
	}

	_, err = svc.SettleActivity(context.Background(), acc.ID, settlement.KindScratch, "")
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded on second free scratch, got %v", err)
	}
	if acc.ScratchesToday != 1 {
		t.Fatalf("expected one scratch consumed, got %d", acc.ScratchesToday)
	}
}

func TestScratchUsesExpiredTierRange(t *testing.T) {
	acc := goldAccount()
	acc.SubExpiresAt = sql.NullTime{Time: testNow.AddDate(0, 0, -1), Valid: true}
	svc, _, _ := newService(acc, &fakeCatalog{}, func() float64 { return 0 })

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindScratch, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Expired gold draws from the free range, not [0.15, 0.75].
	if res.Reward.StringFixed(2) != "0.10" {
		t.Fatalf("expected free-range minimum 0.10, got %s", res.Reward)
	}

	_, err = svc.SettleActivity(context.Background(), acc.ID, settlement.KindScratch, "")
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatal("expired gold must also fall back to the free scratch cap")
	}
}

/* =========================
   Treasure box
   ========================= */

func TestTreasureUnlocksOnThirdTask(t *testing.T) {
	acc := freeAccount()
	cat := &fakeCatalog{tasks: map[string]*catalog.Task{
		"t1": {ID: "t1", Title: "Task", BaseReward: decimal.NewFromFloat(1), Active: true},
	}}
	svc, _, _ := newService(acc, cat, nil)

	for i := 0; i < 2; i++ {
		res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "t1")
		if err != nil {
			t.Fatalf("task %d failed: %v", i+1, err)
		}
		if res.TreasureUnlocked {
			t.Fatalf("treasure unlocked too early after %d tasks", i+1)
		}
	}

	res, err := svc.SettleActivity(context.Background(), acc.ID, settlement.KindTask, "t1")
	if err != nil {
		t.Fatalf("third task failed: %v", err)
	}
	if !res.TreasureUnlocked || !acc.TreasureUnlocked {
		t.Fatal("treasure should unlock on the third task")
	}
}

func TestUnknownKindRejected(t *testing.T) {
	acc := freeAccount()
	svc, _, _ := newService(acc, &fakeCatalog{}, nil)

	_, err := svc.SettleActivity(context.Background(), acc.ID, settlement.Kind("lottery"), "")
	if !errors.Is(err, settlement.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
