package format

import (
	"fmt"
	"time"
)

// FiscalYearStartMonth is the first month of the Indian financial year.
const FiscalYearStartMonth = time.April

// FinancialYear spans April 1 through March 31 of the following year.
type FinancialYear struct {
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
	Label string    `json:"label"`
}

// CurrentFY resolves the financial year containing now. Before April the
// financial year began in the previous calendar year.
func CurrentFY(now time.Time) FinancialYear {
	year := now.Year()
	if now.Month() < FiscalYearStartMonth {
		year--
	}
	return FiscalYearStarting(year, now.Location())
}

// FiscalYearStarting builds the financial year that begins in April of year.
func FiscalYearStarting(year int, loc *time.Location) FinancialYear {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, FiscalYearStartMonth, 1, 0, 0, 0, 0, loc)
	return FinancialYear{
		Start: start,
		End:   start.AddDate(1, 0, -1),
		Label: fmt.Sprintf("FY %d-%d", year, year+1),
	}
}

// StartDate returns the first day as YYYY-MM-DD.
func (fy FinancialYear) StartDate() string {
	return fy.Start.Format(time.DateOnly)
}

// EndDate returns the last day as YYYY-MM-DD.
func (fy FinancialYear) EndDate() string {
	return fy.End.Format(time.DateOnly)
}

// Contains reports whether t falls on or between the first and last day.
func (fy FinancialYear) Contains(t time.Time) bool {
	t = t.In(fy.Start.Location())
	return !t.Before(fy.Start) && t.Before(fy.End.AddDate(0, 0, 1))
}

// Previous returns the financial year before fy.
func (fy FinancialYear) Previous() FinancialYear {
	return FiscalYearStarting(fy.Start.Year()-1, fy.Start.Location())
}

// MarshalJSON emits start/end as calendar dates alongside the label.
func (fy FinancialYear) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"start":%q,"end":%q,"label":%q}`, fy.StartDate(), fy.EndDate(), fy.Label)), nil
}
