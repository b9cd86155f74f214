// Package scheduling decides whether a candidate appointment collides with
// the appointments already booked on the same day.
package scheduling

import (
	"errors"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// ErrConflict is returned by callers when CheckConflict reports an overlap.
var ErrConflict = errors.New("there is already an appointment scheduled at that time")

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not overlap and an empty interval
// overlaps nothing.
func Overlaps(s1, e1, s2, e2 models.TimeOfDay) bool {
	if s1 >= e1 || s2 >= e2 {
		return false
	}
	return s1 < e2 && s2 < e1
}

// CheckConflict reports whether [start,end) on date overlaps any of the
// existing appointments. Appointments on other dates are ignored. On update
// the caller leaves the edited appointment out of existing.
func CheckConflict(date string, start, end models.TimeOfDay, existing []models.Appointment) bool {
	for _, a := range existing {
		if a.Date != date {
			continue
		}
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}
