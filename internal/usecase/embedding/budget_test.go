package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

func newTracker(daily, monthly int64, action BudgetAction) *BudgetTracker {
	return NewBudgetTracker("bge-m3", BudgetLimits{Daily: daily, Monthly: monthly, Action: action}, zap.NewNop())
}

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := newTracker(100, 0, BudgetActionReject)
	bt.Record(100)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := newTracker(100, 0, BudgetActionWarn)
	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_DefaultActionIsWarn(t *testing.T) {
	bt := newTracker(1, 0, "")
	bt.Record(5)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected warn by default, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := newTracker(0, 500, BudgetActionReject)
	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := newTracker(1000, 10000, BudgetActionWarn)
	bt.Record(300)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("expected daily remaining clamped to 0, got %d", got)
	}
	if bt.DailyUsed() != 5300 || bt.MonthlyUsed() != 5300 {
		t.Errorf("used = %d/%d, want 5300/5300", bt.DailyUsed(), bt.MonthlyUsed())
	}
	if bt.DailyLimit() != 1000 || bt.MonthlyLimit() != 10000 {
		t.Errorf("limits = %d/%d", bt.DailyLimit(), bt.MonthlyLimit())
	}
}

func TestBudgetTracker_RemainingUnlimited(t *testing.T) {
	bt := newTracker(0, 0, BudgetActionReject)
	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Error("expected -1 for unlimited budgets")
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	bt := newTracker(100, 1000, BudgetActionReject)
	clock := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	bt.now = func() time.Time { return clock }
	bt.day, bt.month = periodStarts(clock)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	clock = clock.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected reset after midnight, got %v", err)
	}
	if got := bt.RemainingMonthly(); got != 1000 {
		t.Errorf("expected monthly counter reset on new month, got remaining %d", got)
	}
}

type mockBudgetStore struct {
	data    map[string]int64
	ttls    map[string]time.Duration
	getErr  error
	incrErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64, ttl time.Duration) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.data[key] += val
	m.ttls[key] = ttl
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	bt := newTracker(1000, 0, BudgetActionReject)
	now := bt.now()

	ms := newMockBudgetStore()
	ms.data[bt.dailyKey(now)] = 1000
	bt.WithStore(context.Background(), ms)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected loaded usage to exhaust the budget, got %v", err)
	}
}

func TestBudgetTracker_Record_PersistsWithTTL(t *testing.T) {
	bt := newTracker(0, 0, BudgetActionWarn)
	ms := newMockBudgetStore()
	bt.WithStore(context.Background(), ms)

	bt.Record(42)
	bt.Record(8)

	now := bt.now()
	if got := ms.data[bt.dailyKey(now)]; got != 50 {
		t.Errorf("daily counter = %d, want 50", got)
	}
	if got := ms.ttls[bt.dailyKey(now)]; got != dailyCounterTTL {
		t.Errorf("daily ttl = %v", got)
	}
	if got := ms.ttls[bt.monthlyKey(now)]; got != monthlyCounterTTL {
		t.Errorf("monthly ttl = %v", got)
	}
}

func TestBudgetTracker_StoreErrorsKeepMemoryCounters(t *testing.T) {
	bt := newTracker(100, 0, BudgetActionReject)
	ms := newMockBudgetStore()
	ms.getErr = errors.New("down")
	ms.incrErr = errors.New("down")
	bt.WithStore(context.Background(), ms)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected in-memory counter to reject")
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := newTracker(0, 0, BudgetActionWarn)
	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	if got := bt.dailyKey(ts); got != "budget:bge-m3:daily:2026-10-19" {
		t.Errorf("daily key = %q", got)
	}
	if got := bt.monthlyKey(ts); got != "budget:bge-m3:monthly:2026-10" {
		t.Errorf("monthly key = %q", got)
	}
}
