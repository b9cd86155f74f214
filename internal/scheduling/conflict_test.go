package scheduling

import (
	"testing"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

func tod(t *testing.T, s string) models.TimeOfDay {
	t.Helper()
	v, err := models.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}

func TestCheckConflict(t *testing.T) {
	const day = "2025-09-01"
	existing := []models.Appointment{
		{ID: "a", Date: day, StartTime: tod(t, "09:00"), EndTime: tod(t, "10:00")},
	}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"partial overlap after", "09:30", "10:30", true},
		{"partial overlap before", "08:30", "09:30", true},
		{"identical", "09:00", "10:00", true},
		{"contained", "09:15", "09:45", true},
		{"containing", "08:00", "11:00", true},
		{"touching after", "10:00", "11:00", false},
		{"touching before", "08:00", "09:00", false},
		{"disjoint", "13:00", "14:00", false},
		{"degenerate inside", "09:30", "09:30", false},
		{"reversed inside", "09:45", "09:15", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckConflict(day, tod(t, tt.start), tod(t, tt.end), existing)
			if got != tt.want {
				t.Errorf("CheckConflict(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestCheckConflictEmpty(t *testing.T) {
	if CheckConflict("2025-09-01", 0, 1439, nil) {
		t.Fatal("no existing appointments must never conflict")
	}
}

func TestCheckConflictOtherDateIgnored(t *testing.T) {
	existing := []models.Appointment{
		{Date: "2025-09-02", StartTime: tod(t, "09:00"), EndTime: tod(t, "10:00")},
	}
	if CheckConflict("2025-09-01", tod(t, "09:00"), tod(t, "10:00"), existing) {
		t.Fatal("appointment on another day must not conflict")
	}
}

func TestCheckConflictDegenerateExisting(t *testing.T) {
	existing := []models.Appointment{
		{Date: "2025-09-01", StartTime: tod(t, "09:30"), EndTime: tod(t, "09:30")},
	}
	if CheckConflict("2025-09-01", tod(t, "09:00"), tod(t, "10:00"), existing) {
		t.Fatal("an empty existing interval never conflicts")
	}
}

// Exhaustive check over a grid of quarter hours: two intervals overlap iff
// the later start is before the earlier end.
func TestOverlapsMatchesIntervalRule(t *testing.T) {
	const step = 15
	for s1 := 0; s1 <= 120; s1 += step {
		for e1 := s1; e1 <= 120; e1 += step {
			for s2 := 0; s2 <= 120; s2 += step {
				for e2 := s2; e2 <= 120; e2 += step {
					want := max(s1, s2) < min(e1, e2)
					got := Overlaps(models.TimeOfDay(s1), models.TimeOfDay(e1), models.TimeOfDay(s2), models.TimeOfDay(e2))
					if got != want {
						t.Fatalf("[%d,%d) vs [%d,%d): got %v want %v", s1, e1, s2, e2, got, want)
					}
					// symmetric
					if got != Overlaps(models.TimeOfDay(s2), models.TimeOfDay(e2), models.TimeOfDay(s1), models.TimeOfDay(e1)) {
						t.Fatalf("[%d,%d) vs [%d,%d): not symmetric", s1, e1, s2, e2)
					}
				}
			}
		}
	}
}
