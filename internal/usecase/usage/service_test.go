package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

func fixedService(br BudgetReader) *Service {
	s := New(br)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{dailyLimit: 10000, dailyUsed: 3000, remainingDaily: 7000}
	r := fixedService(br).GetReport(context.Background(), PeriodDay)

	if r.Period != PeriodDay {
		t.Errorf("expected period %q, got %q", PeriodDay, r.Period)
	}
	if want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC); !r.Start.Equal(want) {
		t.Errorf("start = %v, want %v", r.Start, want)
	}
	if want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC); !r.End.Equal(want) {
		t.Errorf("end = %v, want %v", r.End, want)
	}
	if r.Limit != 10000 || r.Used != 3000 || r.Remaining != 7000 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Exhausted {
		t.Error("expected not exhausted")
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{monthlyLimit: 100000, monthlyUsed: 100000, remainingMonthly: 0}
	r := fixedService(br).GetReport(context.Background(), PeriodMonth)

	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !r.Start.Equal(want) {
		t.Errorf("start = %v, want %v", r.Start, want)
	}
	if want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); !r.End.Equal(want) {
		t.Errorf("end = %v, want %v", r.End, want)
	}
	if !r.Exhausted {
		t.Error("expected exhausted")
	}
}

func TestGetReport_NilReaderIsUnlimited(t *testing.T) {
	r := fixedService(nil).GetReport(context.Background(), PeriodDay)

	if r.Limit != 0 || r.Used != 0 || r.Remaining != -1 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Exhausted {
		t.Error("unlimited budget is never exhausted")
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != PeriodDay {
		t.Errorf("ParsePeriod(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePeriod("month"); err != nil || p != PeriodMonth {
		t.Errorf("ParsePeriod(month) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("year"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
