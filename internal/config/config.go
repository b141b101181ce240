package config

import (
	"errors"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultAgendaName     = "agenda.yaml"
	DefaultRowsPerHour    = 4
	DefaultDuration       = 90
	DefaultInterval       = 60
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Edit    string `toml:"edit"`
	Delete  string `toml:"delete"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Next    string `toml:"next"`
	Prev    string `toml:"prev"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	ZoomIn  string `toml:"zoom_in"`
	ZoomOut string `toml:"zoom_out"`
}

type SVG struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Period     string `toml:"period_color"`
	Conflict   string `toml:"conflict_color"`
	Ruler      string `toml:"ruler_color"`
	Text       string `toml:"text_color"`
	Background string `toml:"background_color"`
}

type Config struct {
	AgendaPath       string `toml:"agenda_path"`
	ICSPath          string `toml:"ics_path"`
	Timezone         string `toml:"timezone"`
	RowsPerHour      int    `toml:"rows_per_hour"`
	Fit              bool   `toml:"fit"`
	DefaultDuration  int    `toml:"default_duration"`
	TimelineInterval int    `toml:"timeline_interval"`
	LogFile          string `toml:"log_file"`
	LogLevel         string `toml:"log_level"`
	SVG              SVG    `toml:"svg"`
	Keys             Keymap `toml:"keys"`
}

// ResolveConfigPath returns $DAYPLAN_CONFIG when set, else
// ~/.config/dayplan/config.toml, falling back to the working directory when
// no home directory can be found.
func ResolveConfigPath() string {
	if p := os.Getenv("DAYPLAN_CONFIG"); p != "" {
		return p
	}
	home, err := homedir.Dir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", "dayplan", DefaultConfigFileName)
}

// ExpandPath resolves a leading ~ in paths taken from the config file.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	out, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return out
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// normalize fills whatever the file left empty or out of range.
func (c *Config) normalize() {
	def := defaultConfig()
	if c.AgendaPath == "" {
		c.AgendaPath = def.AgendaPath
	}
	if c.RowsPerHour <= 0 {
		c.RowsPerHour = def.RowsPerHour
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = def.DefaultDuration
	}
	if c.TimelineInterval <= 0 {
		c.TimelineInterval = def.TimelineInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.SVG.Width <= 0 {
		c.SVG.Width = def.SVG.Width
	}
	if c.SVG.Height <= 0 {
		c.SVG.Height = def.SVG.Height
	}
	fill(&c.SVG.Period, def.SVG.Period)
	fill(&c.SVG.Conflict, def.SVG.Conflict)
	fill(&c.SVG.Ruler, def.SVG.Ruler)
	fill(&c.SVG.Text, def.SVG.Text)
	fill(&c.SVG.Background, def.SVG.Background)

	fill(&c.Keys.Quit, def.Keys.Quit)
	fill(&c.Keys.Add, def.Keys.Add)
	fill(&c.Keys.Edit, def.Keys.Edit)
	fill(&c.Keys.Delete, def.Keys.Delete)
	fill(&c.Keys.Confirm, def.Keys.Confirm)
	fill(&c.Keys.Cancel, def.Keys.Cancel)
	fill(&c.Keys.Next, def.Keys.Next)
	fill(&c.Keys.Prev, def.Keys.Prev)
	fill(&c.Keys.Up, def.Keys.Up)
	fill(&c.Keys.Down, def.Keys.Down)
	fill(&c.Keys.ZoomIn, def.Keys.ZoomIn)
	fill(&c.Keys.ZoomOut, def.Keys.ZoomOut)
}

func fill(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func defaultConfig() Config {
	return Config{
		AgendaPath:       DefaultAgendaName,
		RowsPerHour:      DefaultRowsPerHour,
		DefaultDuration:  DefaultDuration,
		TimelineInterval: DefaultInterval,
		LogLevel:         "info",
		SVG: SVG{
			Width:      480,
			Height:     1440,
			Period:     "#4a90d9",
			Conflict:   "#d9534f",
			Ruler:      "#cccccc",
			Text:       "#222222",
			Background: "#ffffff",
		},
		Keys: Keymap{
			Quit:    "q",
			Add:     "a",
			Edit:    "e",
			Delete:  "d",
			Confirm: "enter",
			Cancel:  "esc",
			Next:    "tab",
			Prev:    "shift+tab",
			Up:      "k",
			Down:    "j",
			ZoomIn:  "+",
			ZoomOut: "-",
		},
	}
}
