package parse

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/model"
)

const (
	dateLayout          = "2006-01-02"
	datetimeLocalLayout = "2006-01-02T15:04"
)

// FilterError reports an invalid filter value.
type FilterError struct {
	Field string
	Value string
	Msg   string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}

// ParseFilterSpec validates log filter input from a query string or CLI
// flags. Dates are calendar days (YYYY-MM-DD) in loc. Empty and "all"
// values disable the matching filter.
func ParseFilterSpec(q url.Values, loc *time.Location) (logfilter.FilterSpec, error) {
	var spec logfilter.FilterSpec

	status, err := parseStatus("status", q.Get("status"))
	if err != nil {
		return spec, err
	}
	tab, err := parseStatus("tab", q.Get("tab"))
	if err != nil {
		return spec, err
	}
	spec.Status, spec.ViewTab = status, tab

	if v := strings.TrimSpace(q.Get("vehicleType")); v != "" && v != logfilter.All {
		vt := model.VehicleType(strings.ToLower(v))
		if !vt.Valid() {
			return spec, &FilterError{Field: "vehicleType", Value: v, Msg: "unknown vehicle type"}
		}
		spec.VehicleType = vt
	}

	if spec.DateFrom, err = parseDate("dateFrom", q.Get("dateFrom"), loc); err != nil {
		return spec, err
	}
	if spec.DateTo, err = parseDate("dateTo", q.Get("dateTo"), loc); err != nil {
		return spec, err
	}
	if !spec.DateFrom.IsZero() && !spec.DateTo.IsZero() && spec.DateTo.Before(spec.DateFrom) {
		return spec, &FilterError{Field: "dateTo", Value: q.Get("dateTo"), Msg: "before dateFrom"}
	}

	spec.SearchTerm = strings.TrimSpace(q.Get("search"))
	return spec, nil
}

func parseStatus(field, raw string) (model.VehicleStatus, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || v == logfilter.All {
		return "", nil
	}
	s := model.VehicleStatus(v)
	if !s.Valid() {
		return "", &FilterError{Field: field, Value: raw, Msg: "expected all, parked or exited"}
	}
	return s, nil
}

func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, &FilterError{Field: field, Value: raw, Msg: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// ParsePickupTime accepts an RFC 3339 timestamp or a browser datetime-local
// value, which is read in loc.
func ParsePickupTime(raw string, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(datetimeLocalLayout, v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, &FilterError{Field: "pickupTime", Value: raw, Msg: "expected RFC 3339 or YYYY-MM-DDTHH:MM"}
}
