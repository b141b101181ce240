package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"dayplan/internal/agenda"
	appLog "dayplan/internal/log"
)

type yamlPeriod struct {
	Title    string `yaml:"title"`
	Start    *clock `yaml:"start"`
	End      *clock `yaml:"end"`
	Duration *int   `yaml:"duration"`
}

// clock is a time of day written either as "HH:MM" or as plain minutes.
type clock int

func (c *clock) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", agenda.ErrInvalidClock, value.Line)
	}
	m, err := agenda.ParseClock(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = clock(m)
	return nil
}

// LoadYAML reads an agenda file from disk.
func LoadYAML(path string, defaultDuration int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := DecodeYAML(f, defaultDuration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	appLog.Info("agenda loaded", "path", path, "periods", len(entries))
	return entries, nil
}

// DecodeYAML parses an agenda document. A malformed document is an error;
// an entry with bad times is logged and skipped.
func DecodeYAML(r io.Reader, defaultDuration int) ([]Entry, error) {
	if defaultDuration <= 0 {
		defaultDuration = agenda.DefaultDuration
	}

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var raw struct {
		Periods []yaml.Node `yaml:"periods"`
	}
	if err := doc.Decode(&raw); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw.Periods))
	for i := range raw.Periods {
		node := &raw.Periods[i]
		var yp yamlPeriod
		if err := node.Decode(&yp); err != nil {
			appLog.Error("agenda entry skipped", err, "index", i, "line", node.Line)
			continue
		}
		e, err := yp.entry(defaultDuration)
		if err != nil {
			appLog.Error("agenda entry skipped", err, "index", i, "line", node.Line, "title", yp.Title)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (yp yamlPeriod) entry(defaultDuration int) (Entry, error) {
	if yp.Start == nil {
		return Entry{}, fmt.Errorf("%w: missing start", agenda.ErrInvalidClock)
	}
	e := Entry{Title: yp.Title, Start: int(*yp.Start)}
	switch {
	case yp.End != nil:
		e.End = int(*yp.End)
	case yp.Duration != nil:
		if *yp.Duration < 0 {
			return Entry{}, fmt.Errorf("%w: negative duration %d", agenda.ErrInvalidClock, *yp.Duration)
		}
		e.End = min(e.Start+*yp.Duration, agenda.MinutesPerDay)
	default:
		e.End = min(e.Start+defaultDuration, agenda.MinutesPerDay)
	}
	return e, e.Validate()
}
