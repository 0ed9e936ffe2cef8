package model

import (
	"fmt"
	"strings"
	"time"
)

// DayType classifies one staff member's attendance on one date.
type DayType string

// Day types.
const (
	DayFull   DayType = "full"
	DayHalf   DayType = "half"
	DayAbsent DayType = "absent"
)

// Valid reports whether d is a known day type.
func (d DayType) Valid() bool {
	switch d {
	case DayFull, DayHalf, DayAbsent:
		return true
	}
	return false
}

// AttendanceDay is the attendance record of one staff member for one date.
type AttendanceDay struct {
	StaffID string    `json:"staffId"`
	Date    time.Time `json:"date"`
	DayType DayType   `json:"dayType"`
}

// CalendarDate drops the clock and zone of t and returns its calendar date
// at midnight UTC. Attendance dates are stored in this form.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks a single attendance record.
func (a AttendanceDay) Validate() error {
	switch {
	case strings.TrimSpace(a.StaffID) == "":
		return fmt.Errorf("%w: missing staffId", ErrInvalidAttendance)
	case a.Date.IsZero():
		return fmt.Errorf("%w: %s: missing date", ErrInvalidAttendance, a.StaffID)
	case !a.DayType.Valid():
		return fmt.Errorf("%w: %s: unknown dayType %q", ErrInvalidAttendance, a.StaffID, a.DayType)
	}
	return nil
}

// ValidateAttendance checks every record and the one-dayType-per-date invariant.
func ValidateAttendance(days []AttendanceDay) error {
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if err := d.Validate(); err != nil {
			return err
		}
		key := d.StaffID + "|" + d.Date.Format(time.DateOnly)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateDay, d.StaffID, d.Date.Format(time.DateOnly))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// AttendanceSummary is the derived monthly attendance of one staff member.
type AttendanceSummary struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	PresentCount int     `json:"presentCount"`
	AbsentCount  int     `json:"absentCount"`
	FullDayCount int     `json:"fullDayCount"`
	HalfDayCount int     `json:"halfDayCount"`
	Percentage   float64 `json:"percentage"`
}
