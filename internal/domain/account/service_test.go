package account_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/fraud"
)

/* =========================
   Fakes
   ========================= */

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type fakeStore struct {
	acc  *account.Account
	txns []account.Transaction
	refs map[string]bool
}

func newFakeStore(acc *account.Account) *fakeStore {
	return &fakeStore{acc: acc, refs: map[string]bool{}}
}

func (f *fakeStore) Create(_ context.Context, acc *account.Account, signupTxn *account.Transaction) error {
	cp := *acc
	f.acc = &cp
	if signupTxn != nil {
		f.txns = append(f.txns, *signupTxn)
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	if f.acc == nil || id != f.acc.ID {
		return nil, account.ErrAccountNotFound
	}
	cp := *f.acc
	return &cp, nil
}

func (f *fakeStore) Mutate(_ context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error) {
	if f.acc == nil || id != f.acc.ID {
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

func (f *fakeStore) ListTransactions(_ context.Context, _ uuid.UUID, _, _ int) ([]account.Transaction, int, error) {
	return f.txns, len(f.txns), nil
}

type fakeFlagStore struct{ entries []fraud.LogEntry }

func (f *fakeFlagStore) InsertLog(_ context.Context, entry *fraud.LogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

/* =========================
   Fixtures
   ========================= */

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, devices []string) (*account.Service, *fakeStore, *fakeFlagStore, *account.Account) {
	t.Helper()
	acc := &account.Account{
		ID:        uuid.New(),
		Balance:   decimal.NewFromFloat(5.00),
		DeviceIDs: devices,
	}
	store := newFakeStore(acc)
	flags := &fakeFlagStore{}
	clk := &fakeClock{now: testNow}
	monitor := fraud.NewMonitor(store, flags, clk, decimal.NewFromInt(50), 3)
	svc := account.NewService(store, clk, decimal.NewFromFloat(2.00), monitor)
	return svc, store, flags, acc
}

/* =========================
   Create
   ========================= */

func TestCreateCreditsSignupBonus(t *testing.T) {
	svc, store, _, _ := setup(t, nil)
	userID := uuid.New()

	acc, err := svc.Create(context.Background(), userID, "", "device-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.Balance.StringFixed(2) != "2.00" || acc.TotalEarned.StringFixed(2) != "2.00" {
		t.Fatalf("signup bonus not credited: %+v", acc)
	}
	if !acc.ReferralCode.Valid || len(acc.ReferralCode.String) != 6 {
		t.Fatalf("referral code not generated: %+v", acc.ReferralCode)
	}
	if len(store.txns) != 1 {
		t.Fatalf("expected one signup transaction, got %d", len(store.txns))
	}
	txn := store.txns[0]
	if txn.Description != "Signup Bonus" || !strings.HasSuffix(txn.Reference.String, "_signup") {
		t.Fatalf("unexpected signup transaction: %+v", txn)
	}
}

/* =========================
   RegisterDevice
   ========================= */

func TestRegisterDeviceFlagsFourthDevice(t *testing.T) {
	svc, store, flags, acc := setup(t, []string{"d1", "d2", "d3"})

	got, err := svc.RegisterDevice(context.Background(), acc.ID, "d4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.DeviceIDs) != 4 {
		t.Fatalf("expected 4 devices, got %d", len(got.DeviceIDs))
	}

	// The monitor runs on the registration itself, not on the next earning.
	if store.acc.FraudCount != 1 {
		t.Fatalf("expected fraud count 1, got %d", store.acc.FraudCount)
	}
	found := false
	for _, r := range store.acc.FraudReasons {
		if r == fraud.ReasonMultipleDevices {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q in reasons, got %v", fraud.ReasonMultipleDevices, store.acc.FraudReasons)
	}
	if len(flags.entries) != 1 || flags.entries[0].DeviceCount != 4 {
		t.Fatalf("expected one log entry with device count 4, got %+v", flags.entries)
	}
}

func TestRegisterDeviceKnownDeviceIsNoOp(t *testing.T) {
	svc, store, flags, acc := setup(t, []string{"d1", "d2", "d3"})

	got, err := svc.RegisterDevice(context.Background(), acc.ID, "d2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.DeviceIDs) != 3 {
		t.Fatalf("known device grew the list: %v", got.DeviceIDs)
	}
	if !got.LastLoginAt.Valid || !got.LastLoginAt.Time.Equal(testNow) {
		t.Fatalf("last login not stamped: %+v", got.LastLoginAt)
	}
	if store.acc.FraudCount != 0 || len(flags.entries) != 0 {
		t.Fatalf("within-limit device list must not flag: count=%d logs=%d", store.acc.FraudCount, len(flags.entries))
	}
}

func TestRegisterDeviceEmptyIDReadsAccount(t *testing.T) {
	svc, _, flags, acc := setup(t, []string{"d1"})

	got, err := svc.RegisterDevice(context.Background(), acc.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.DeviceIDs) != 1 {
		t.Fatalf("empty device id mutated the list: %v", got.DeviceIDs)
	}
	if len(flags.entries) != 0 {
		t.Fatal("read path must not notify the monitor")
	}
}
