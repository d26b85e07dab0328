package logfilter

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDuration is returned when a record's exit precedes its entry.
var ErrNegativeDuration = errors.New("exit time before entry time")

// Duration is a parking stay in whole hours and minutes.
type Duration struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Ongoing bool `json:"ongoing"`
}

// ComputeDuration measures entry to exit, or entry to now when the vehicle
// has not left yet.
func ComputeDuration(entry time.Time, exit *time.Time, now time.Time) (Duration, error) {
	end, ongoing := now, true
	if exit != nil {
		end, ongoing = *exit, false
	}

	d := end.Sub(entry)
	if d < 0 {
		if ongoing {
			return Duration{}, fmt.Errorf("entry %s is in the future: %w", entry.Format(time.RFC3339), ErrNegativeDuration)
		}
		return Duration{}, ErrNegativeDuration
	}

	total := int(d / time.Minute)
	return Duration{Hours: total / 60, Minutes: total % 60, Ongoing: ongoing}, nil
}

// String renders "2h 30m", with an "(Ongoing)" suffix for open stays.
func (d Duration) String() string {
	s := fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
	if d.Ongoing {
		s += " (Ongoing)"
	}
	return s
}
