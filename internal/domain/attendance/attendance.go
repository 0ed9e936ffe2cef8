// Package attendance summarizes daily attendance records per calendar month.
package attendance

import (
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/period"
	"github.com/okian/tally/internal/domain/trend"
	"github.com/okian/tally/internal/domain/types"
)

const (
	// DefaultHalfDayWeight counts a half day as a full present day.
	DefaultHalfDayWeight = 1.0
	// percentagePlaces is the precision at which month-over-month trends are compared.
	percentagePlaces = 1
)

// Option applies a configuration option to a summary.
type Option func(*summarizer)

// WithHalfDayWeight sets how much a half day counts toward the percentage.
// Values outside [0,1] are ignored. PresentCount is unaffected.
func WithHalfDayWeight(w float64) Option {
	return func(s *summarizer) {
		if w >= 0 && w <= 1 {
			s.halfDayWeight = w
		}
	}
}

type summarizer struct {
	halfDayWeight float64
}

func newSummarizer(opts []Option) *summarizer {
	s := &summarizer{halfDayWeight: DefaultHalfDayWeight}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SummarizeMonth counts the records of days that fall inside p.
// The percentage is present over recorded days, or 0 when nothing was recorded.
func SummarizeMonth(days []model.AttendanceDay, p period.Period, opts ...Option) model.AttendanceSummary {
	s := newSummarizer(opts)
	out := model.AttendanceSummary{Year: p.Year, Month: int(p.Month)}
	for _, d := range days {
		if !p.ContainsDate(d.Date) {
			continue
		}
		switch d.DayType {
		case model.DayFull:
			out.FullDayCount++
		case model.DayHalf:
			out.HalfDayCount++
		case model.DayAbsent:
			out.AbsentCount++
		}
	}
	out.PresentCount = out.FullDayCount + out.HalfDayCount

	recorded := out.FullDayCount + out.HalfDayCount + out.AbsentCount
	if recorded > 0 {
		present := float64(out.FullDayCount) + float64(out.HalfDayCount)*s.halfDayWeight
		out.Percentage = present * 100 / float64(recorded)
	}
	return out
}

// Comparison pairs a month's summary with the month before it.
type Comparison struct {
	Current  model.AttendanceSummary `json:"current"`
	Previous model.AttendanceSummary `json:"previous"`
	Trend    types.Trend             `json:"trend"`
}

// MonthOverMonth summarizes p and the preceding month and classifies the
// attendance trend on percentages rounded to one decimal place.
func MonthOverMonth(days []model.AttendanceDay, p period.Period, opts ...Option) Comparison {
	cur := SummarizeMonth(days, p, opts...)
	prev := SummarizeMonth(days, p.Previous(), opts...)
	return Comparison{
		Current:  cur,
		Previous: prev,
		Trend:    trend.ClassifyRounded(cur.Percentage, prev.Percentage, percentagePlaces),
	}
}
