package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	separatorRe = regexp.MustCompile(`[\s\-_.]+`)
	plateRe     = regexp.MustCompile(`^(?:([A-Z]{2}) )?([A-Z]{1,3}|\d{1,3}) ?(\d{4})$`)
)

// Plate is a vehicle registration number split into its parts.
type Plate struct {
	Province string // optional two-letter prefix, e.g. WP
	Series   string
	Number   string
}

// String renders the canonical form, e.g. "WP CAB-1234".
func (p Plate) String() string {
	s := p.Series + "-" + p.Number
	if p.Province != "" {
		s = p.Province + " " + s
	}
	return s
}

// ParsePlate extracts province, series and number from a registration
// number typed by a guest or an operator.
func ParsePlate(raw string) (Plate, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(separatorRe.ReplaceAllString(s, " "))

	m := plateRe.FindStringSubmatch(s)
	if m == nil {
		return Plate{}, fmt.Errorf("unable to parse vehicle number: %q", raw)
	}
	return Plate{Province: m[1], Series: m[2], Number: m[3]}, nil
}

// NormalizeVehicleNumber returns the canonical plate when raw parses, and
// otherwise the upper-cased input with separators collapsed, so foreign
// plates can still be matched.
func NormalizeVehicleNumber(raw string) string {
	if p, err := ParsePlate(raw); err == nil {
		return p.String()
	}
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.TrimSpace(separatorRe.ReplaceAllString(s, " "))
}
