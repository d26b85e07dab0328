// Package logfilter turns the vehicle activity history into the filtered,
// sorted and summarised view shown in the parking log, and serialises it for
// export. Every function here is pure: inputs are never modified.
package logfilter

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"hotel-console-backend/internal/model"
)

// All is the selector value that disables a filter.
const All = "all"

// FilterSpec is the set of predicates narrowing the log. The zero value
// matches every record.
type FilterSpec struct {
	Status      model.VehicleStatus // "" or "all" disables
	VehicleType model.VehicleType   // "" or "all" disables
	// DateFrom and DateTo are calendar days; only their year, month and day
	// are used, interpreted in the engine's location. Zero disables.
	DateFrom   time.Time
	DateTo     time.Time
	SearchTerm string
	ViewTab    model.VehicleStatus // "" or "all" disables; intersected with Status
}

// Engine applies filter specs and renders exports in a fixed time zone.
type Engine struct {
	loc      *time.Location
	now      func() time.Time
	currency string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, used for ongoing durations and file names.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCurrency sets the currency label used in PDF summaries.
func WithCurrency(currency string) Option {
	return func(e *Engine) { e.currency = currency }
}

// NewEngine creates an engine evaluating calendar days in loc.
func NewEngine(loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{loc: loc, now: time.Now, currency: "LKR"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the zone used for calendar days and timestamps.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Currency returns the label amounts are reported in.
func (e *Engine) Currency() string {
	return e.currency
}

// Now returns the engine clock's current instant.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Apply returns the records matching spec, newest entry first. Records with
// equal entry times are ordered by ID so the result is reproducible.
func (e *Engine) Apply(records []model.VehicleActivity, spec FilterSpec) []model.VehicleActivity {
	m := e.newMatcher(spec)

	out := make([]model.VehicleActivity, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}

	slices.SortFunc(out, func(a, b model.VehicleActivity) int {
		if c := b.EntryTime.Compare(a.EntryTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

type matcher struct {
	tab, status model.VehicleStatus
	vehicleType model.VehicleType
	from, until time.Time
	search      string
}

func (e *Engine) newMatcher(spec FilterSpec) matcher {
	m := matcher{search: strings.ToLower(spec.SearchTerm)}
	if !isAll(string(spec.ViewTab)) {
		m.tab = spec.ViewTab
	}
	if !isAll(string(spec.Status)) {
		m.status = spec.Status
	}
	if !isAll(string(spec.VehicleType)) {
		m.vehicleType = spec.VehicleType
	}
	if !spec.DateFrom.IsZero() {
		m.from = e.startOfDay(spec.DateFrom)
	}
	if !spec.DateTo.IsZero() {
		m.until = e.startOfDay(spec.DateTo).AddDate(0, 0, 1)
	}
	return m
}

func (m matcher) match(r model.VehicleActivity) bool {
	if m.tab != "" && r.Status != m.tab {
		return false
	}
	if m.status != "" && r.Status != m.status {
		return false
	}
	if m.vehicleType != "" && r.VehicleType != m.vehicleType {
		return false
	}
	if !m.from.IsZero() && !r.EntryTime.After(m.from) {
		return false
	}
	if !m.until.IsZero() && !r.EntryTime.Before(m.until) {
		return false
	}
	if m.search != "" &&
		!strings.Contains(strings.ToLower(r.VehicleNumber), m.search) &&
		!strings.Contains(strings.ToLower(r.GuestName), m.search) &&
		!strings.Contains(strings.ToLower(r.GuestRoom), m.search) {
		return false
	}
	return true
}

// startOfDay returns midnight of d's calendar day in the engine's zone.
func (e *Engine) startOfDay(d time.Time) time.Time {
	y, mo, day := d.Date()
	return time.Date(y, mo, day, 0, 0, 0, 0, e.loc)
}

func isAll(s string) bool {
	return s == "" || s == All
}

// Tabs holds the record totals shown on the log tabs.
type Tabs struct {
	All    int `json:"all"`
	Parked int `json:"parked"`
	Exited int `json:"exited"`
}

// TabCounts counts records per tab. Callers pass the unfiltered set.
func TabCounts(records []model.VehicleActivity) Tabs {
	tc := Tabs{All: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.StatusParked:
			tc.Parked++
		case model.StatusExited:
			tc.Exited++
		}
	}
	return tc
}
