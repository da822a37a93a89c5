package prisma

import (
	"fmt"
	"strings"
)

// TimeRange is a relative alert query window.
type TimeRange struct {
	Amount int
	Unit   string
}

var validUnits = map[string]struct{}{
	"day":   {},
	"week":  {},
	"month": {},
	"year":  {},
}

// DefaultTimeRange is the past month.
var DefaultTimeRange = TimeRange{Amount: 1, Unit: "month"}

// Validate checks amount is 1-3 and unit is day, week, month or year.
func (tr TimeRange) Validate() error {
	if tr.Amount < 1 || tr.Amount > 3 {
		return fmt.Errorf("time range amount must be 1, 2 or 3, got %d", tr.Amount)
	}
	if _, ok := validUnits[tr.Unit]; !ok {
		return fmt.Errorf("time range unit must be one of day, week, month, year, got %q", tr.Unit)
	}
	return nil
}

// Label renders the range as printed in report banners.
func (tr TimeRange) Label() string {
	unit := tr.Unit
	if unit != "" {
		unit = strings.ToUpper(unit[:1]) + strings.ToLower(unit[1:])
	}
	return fmt.Sprintf("Time Range - Past %d %s", tr.Amount, unit)
}
