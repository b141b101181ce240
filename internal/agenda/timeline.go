package agenda

import "weak"

// DefaultInterval is the ruler spacing in minutes.
const DefaultInterval = 60

// Mark is one ruler line.
type Mark struct {
	Minute int
	Offset float64
	Label  string
}

// Timeline is a ruler scaled to its Day. It keeps nothing but the marks it
// last generated.
type Timeline struct {
	interval int
	parent   weak.Pointer[Day]
	marks    []Mark
}

var _ Child = (*Timeline)(nil)

func NewTimeline(interval int) *Timeline {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timeline{interval: interval}
}

func (t *Timeline) Interval() int { return t.interval }

func (t *Timeline) Parent() *Day { return t.parent.Value() }

func (t *Timeline) SetParent(d *Day) {
	if d == nil {
		return
	}
	t.parent = weak.Make(d)
	t.regenerate()
}

// Marks runs from 0 to the Day's total minutes inclusive.
func (t *Timeline) Marks() []Mark {
	out := make([]Mark, len(t.marks))
	copy(out, t.marks)
	return out
}

func (t *Timeline) regenerate() {
	d := t.Parent()
	if d == nil {
		t.marks = nil
		return
	}
	step := d.PixelStep()
	total := d.TotalMinutes()
	marks := make([]Mark, 0, total/t.interval+1)
	for m := 0; m <= total; m += t.interval {
		marks = append(marks, Mark{
			Minute: m,
			Offset: step * float64(m),
			Label:  MinutesToLabel(m),
		})
	}
	t.marks = marks
}

func (t *Timeline) release() {
	t.parent = weak.Pointer[Day]{}
	t.marks = nil
}
