package logfilter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"hotel-console-backend/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Valid reports whether f is a supported export format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatPDF
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

const (
	timestampLayout = "02/01/2006 15:04"
	filenameLayout  = "2006-01-02"
	missing         = "-"
)

// Header is the fixed column order of the exported log.
var Header = []string{
	"Vehicle Number", "Type", "Guest Name", "Room", "Phone",
	"Entry Time", "Exit Time", "Duration", "Amount", "Status",
}

// ExportFilename names an export produced at now, e.g. parking-log-2024-03-15.csv.
func (e *Engine) ExportFilename(now time.Time, f Format) string {
	return fmt.Sprintf("parking-log-%s.%s", now.In(e.loc).Format(filenameLayout), f)
}

// ExportCSV writes records, in the given order, as CSV with a header row.
// Durations for parked vehicles are measured against the engine clock.
func (e *Engine) ExportCSV(w io.Writer, records []model.VehicleActivity) ([]Warning, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("logfilter: write csv header: %w", err)
	}

	now := e.now()
	var warnings []Warning
	for _, r := range records {
		row, warn := e.row(r, now)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		if err := cw.Write(row); err != nil {
			return warnings, fmt.Errorf("logfilter: write csv row %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return warnings, fmt.Errorf("logfilter: flush csv: %w", err)
	}
	return warnings, nil
}

// row renders one record in Header order.
func (e *Engine) row(r model.VehicleActivity, now time.Time) ([]string, *Warning) {
	exit, amount := missing, missing
	if r.ExitTime != nil {
		exit = e.FormatTimestamp(*r.ExitTime)
	}
	if r.TotalAmount != nil {
		amount = FormatAmount(*r.TotalAmount)
	}

	var warn *Warning
	duration := missing
	if d, err := ComputeDuration(r.EntryTime, r.ExitTime, now); err != nil {
		warn = &Warning{RecordID: r.ID, Kind: WarnNegativeDuration, Detail: err.Error()}
	} else {
		duration = d.String()
	}

	return []string{
		r.VehicleNumber,
		string(r.VehicleType),
		r.GuestName,
		r.GuestRoom,
		r.GuestPhone,
		e.FormatTimestamp(r.EntryTime),
		exit,
		duration,
		amount,
		string(r.Status),
	}, warn
}

// FormatTimestamp renders t as DD/MM/YYYY HH:mm in the engine's zone.
func (e *Engine) FormatTimestamp(t time.Time) string {
	return t.In(e.loc).Format(timestampLayout)
}

// FormatAmount renders an amount without trailing zeros: 500, 12.5.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
