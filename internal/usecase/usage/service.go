// Package usage reports embedding token spend against the configured budget.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: period must be %q or %q, got %q", domain.ErrInvalidArgument, PeriodDay, PeriodMonth, s)
	}
}

// Report is the token spend for one UTC period.
type Report struct {
	Period    Period
	Start     time.Time
	End       time.Time
	Limit     int64 // 0 = unlimited
	Used      int64
	Remaining int64 // -1 = unlimited
	Exhausted bool
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := s.now().UTC()
	r := Report{Period: period, Remaining: -1}

	switch period {
	case PeriodMonth:
		r.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.End = r.Start.AddDate(0, 1, 0)
		if s.br != nil {
			r.Limit = s.br.MonthlyLimit()
			r.Used = s.br.MonthlyUsed()
			r.Remaining = s.br.RemainingMonthly()
		}
	default:
		r.Period = PeriodDay
		r.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.End = r.Start.Add(24 * time.Hour)
		if s.br != nil {
			r.Limit = s.br.DailyLimit()
			r.Used = s.br.DailyUsed()
			r.Remaining = s.br.RemainingDaily()
		}
	}

	r.Exhausted = r.Limit > 0 && r.Remaining <= 0
	return r
}
