// Package cli wires the dayplan commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dayplan/internal/agenda"
	"dayplan/internal/config"
	appLog "dayplan/internal/log"
	"dayplan/internal/source"
	"dayplan/internal/ui"
)

// ErrConflicts is returned by check when any two Periods overlap.
var ErrConflicts = errors.New("overlapping periods")

type options struct {
	configPath string
	agendaPath string
	icsPath    string
	date       string
	logLevel   string
}

// session is what every command starts from.
type session struct {
	cfg     config.Config
	date    time.Time
	entries []source.Entry
}

func New() *cobra.Command {
	oo := &options{}

	cmd := &cobra.Command{
		Use:           "dayplan",
		Short:         "Lay out a day of periods and drag them around in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `
dayplan --agenda ~/agenda.yaml
dayplan --ics work.ics --date 2026-03-02
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := oo.load()
			if err != nil {
				return err
			}
			return ui.Run(s.cfg, source.Periods(s.entries), s.date)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&oo.configPath, "config", "", "config file (default ~/.config/dayplan/config.toml)")
	flags.StringVar(&oo.agendaPath, "agenda", "", "YAML agenda file")
	flags.StringVar(&oo.icsPath, "ics", "", "iCalendar file to read events from")
	flags.StringVar(&oo.date, "date", "", "day to show, YYYY-MM-DD (default today)")
	flags.StringVar(&oo.logLevel, "log-level", "", "debug, info or error")

	addCommands(cmd, oo)
	return cmd
}

func addCommands(topLevel *cobra.Command, oo *options) {
	addSVG(topLevel, oo)
	addCheck(topLevel, oo)
}

func (oo *options) load() (*session, error) {
	path := oo.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	agendaExplicit := oo.agendaPath != ""
	if agendaExplicit {
		cfg.AgendaPath = oo.agendaPath
	}
	if oo.icsPath != "" {
		cfg.ICSPath = oo.icsPath
	}
	if oo.logLevel != "" {
		cfg.LogLevel = oo.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	date, err := parseDate(oo.date, cfg.Timezone)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, date: date}
	if p := config.ExpandPath(cfg.AgendaPath); p != "" {
		entries, err := source.LoadYAML(p, cfg.DefaultDuration)
		switch {
		case err == nil:
			s.entries = append(s.entries, entries...)
		case errors.Is(err, os.ErrNotExist) && !agendaExplicit:
			appLog.Info("no agenda file", "path", p)
		default:
			return nil, err
		}
	}
	if p := config.ExpandPath(cfg.ICSPath); p != "" {
		entries, err := source.LoadICS(p, date, cfg.DefaultDuration)
		if err != nil {
			return nil, err
		}
		s.entries = append(s.entries, entries...)
	}
	return s, nil
}

func parseDate(v, tz string) (time.Time, error) {
	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("timezone %q: %w", tz, err)
		}
		loc = l
	}
	if v == "" {
		y, m, d := time.Now().In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD: %w", v, err)
	}
	return t, nil
}

// layDay attaches the session's Periods and a ruler to a Day laid out in
// box and runs the first frame.
func (s *session) layDay(box agenda.FixedLayout) *agenda.Day {
	page := agenda.NewPage(box.Height, box.Top+box.Height)
	d := agenda.NewDay(box, page)
	d.Attach(agenda.NewTimeline(s.cfg.TimelineInterval))
	for _, p := range source.Periods(s.entries) {
		d.Attach(p)
	}
	d.Flush()
	return d
}
