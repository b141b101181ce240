// Package source turns agenda files into Periods.
package source

import (
	"fmt"

	"dayplan/internal/agenda"
)

// Entry is one interval read from a file, in minutes since midnight.
type Entry struct {
	Title string
	Start int
	End   int
}

func (e Entry) Validate() error {
	if e.Start < 0 || e.Start > agenda.MinutesPerDay {
		return fmt.Errorf("%w: start %d outside the day", agenda.ErrInvalidClock, e.Start)
	}
	if e.End < e.Start || e.End > agenda.MinutesPerDay {
		return fmt.Errorf("%w: end %d before start or past midnight", agenda.ErrInvalidClock, e.End)
	}
	return nil
}

func (e Entry) Period() *agenda.Period {
	return agenda.NewPeriod(
		agenda.WithTitle(e.Title),
		agenda.WithStart(e.Start),
		agenda.WithEnd(e.End),
	)
}

// Periods builds one Period per entry, in order.
func Periods(entries []Entry) []*agenda.Period {
	out := make([]*agenda.Period, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Period())
	}
	return out
}
