package logfilter

import (
	"fmt"
	"math"

	"hotel-console-backend/internal/model"
)

// WarningKind classifies a data-integrity problem in a record.
type WarningKind string

const (
	WarnMissingAmount    WarningKind = "missing_amount"
	WarnNegativeAmount   WarningKind = "negative_amount"
	WarnMissingExitTime  WarningKind = "missing_exit_time"
	WarnNegativeDuration WarningKind = "negative_duration"
)

// Warning reports a recoverable inconsistency in a single record.
type Warning struct {
	RecordID string      `json:"recordId"`
	Kind     WarningKind `json:"kind"`
	Detail   string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("record %s: %s (%s)", w.RecordID, w.Kind, w.Detail)
}

// Summary is the aggregate shown above the log.
type Summary struct {
	Count           int       `json:"count"`
	TotalRevenue    float64   `json:"totalRevenue"`
	CurrentlyParked int       `json:"currentlyParked"`
	Warnings        []Warning `json:"warnings,omitempty"`
}

// Aggregate totals records that have already been filtered. Exited records
// without an amount contribute nothing to revenue and are reported.
func Aggregate(records []model.VehicleActivity) Summary {
	s := Summary{Count: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.StatusParked:
			s.CurrentlyParked++
		case model.StatusExited:
			switch {
			case r.TotalAmount == nil:
				s.Warnings = append(s.Warnings, Warning{RecordID: r.ID, Kind: WarnMissingAmount, Detail: "exited without total amount; counted as 0"})
			case *r.TotalAmount < 0:
				s.Warnings = append(s.Warnings, Warning{RecordID: r.ID, Kind: WarnNegativeAmount, Detail: fmt.Sprintf("amount %v excluded from revenue", *r.TotalAmount)})
			default:
				s.TotalRevenue += *r.TotalAmount
			}
			if r.ExitTime == nil {
				s.Warnings = append(s.Warnings, Warning{RecordID: r.ID, Kind: WarnMissingExitTime, Detail: "exited without exit time"})
			}
		}
		if r.ExitTime != nil && r.ExitTime.Before(r.EntryTime) {
			s.Warnings = append(s.Warnings, Warning{RecordID: r.ID, Kind: WarnNegativeDuration, Detail: ErrNegativeDuration.Error()})
		}
	}
	s.TotalRevenue = math.Round(s.TotalRevenue*100) / 100
	return s
}
