package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"dayplan/internal/agenda"
)

// Report writes one row per Period with the titles it overlaps and returns
// how many Periods are in conflict.
func Report(w io.Writer, periods []*agenda.Period) (int, error) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("Title"), bold.Sprint("Time"), bold.Sprint("Length"), bold.Sprint("Overlaps"))

	conflicts := 0
	for _, p := range periods {
		others := agenda.Conflicts(p, periods)
		overlaps := "-"
		title := p.Title()
		if title == "" {
			title = "(untitled)"
		}
		if len(others) > 0 {
			conflicts++
			names := make([]string, 0, len(others))
			for _, o := range others {
				names = append(names, fmt.Sprintf("%s %s", o.Title(), agenda.MinutesToLabel(o.Start())))
			}
			overlaps = red.Sprint(strings.Join(names, ", "))
			title = red.Sprint(title)
		}
		tbl.AddRow(title, agenda.MinutesToLabel(p.Start())+" – "+agenda.MinutesToLabel(p.End()), agenda.DurationLabel(p.Duration()), overlaps)
	}

	if _, err := fmt.Fprintln(w, tbl); err != nil {
		return conflicts, err
	}
	return conflicts, nil
}
