// Package agenda lays out a single day: a Day maps minutes since midnight
// onto a rendered column, Periods are draggable intervals inside it and
// Timelines are the hour rulers next to it.
//
// Everything here runs on the host's event loop. Nothing is safe for
// concurrent use; hosts serialize input, resize and frame callbacks.
package agenda

import (
	appLog "dayplan/internal/log"
)

const (
	// MinutesPerDay is the span of a Day unless WithTotalMinutes says otherwise.
	MinutesPerDay = 1440
	// SnapMinutes is the drag quantum.
	SnapMinutes = 15
	// DefaultDuration is the length of a Period created without one.
	DefaultDuration = 90
)

// Child is something a Day hands its geometry to.
type Child interface {
	SetParent(d *Day)
	release()
}

type Day struct {
	total  int
	layout Layout
	doc    Document
	frames *Frames

	periods   []*Period
	timelines []*Timeline
	moved     map[*Period]func()

	lastStep       float64
	removeListener func()
}

type DayOption func(*Day)

// WithTotalMinutes overrides the 1440 minute span. Non-positive values are
// ignored.
func WithTotalMinutes(n int) DayOption {
	return func(d *Day) {
		if n > 0 {
			d.total = n
		}
	}
}

// WithFrames shares a frame queue with the host.
func WithFrames(f *Frames) DayOption {
	return func(d *Day) {
		if f != nil {
			d.frames = f
		}
	}
}

func NewDay(layout Layout, doc Document, opts ...DayOption) *Day {
	d := &Day{
		total:  MinutesPerDay,
		layout: layout,
		doc:    doc,
		moved:  make(map[*Period]func()),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.frames == nil {
		d.frames = NewFrames()
	}
	d.lastStep = d.PixelStep()
	d.removeListener = doc.AddPointerListener(d.handlePointer)
	return d
}

func (d *Day) TotalMinutes() int { return d.total }

// PixelStep is the number of pixels per minute for the current box.
func (d *Day) PixelStep() float64 {
	return d.layout.ContentBox().Height / float64(d.total)
}

func (d *Day) Height() float64 { return d.layout.ContentBox().Height }

// Top is the content area's top edge in document coordinates, so drag math
// survives the document scrolling mid-gesture.
func (d *Day) Top() float64 {
	return d.layout.ContentBox().Top + d.doc.ScrollTop()
}

func (d *Day) Box() Rect { return d.layout.ContentBox() }

func (d *Day) Document() Document { return d.doc }

func (d *Day) Frames() *Frames { return d.frames }

func (d *Day) Periods() []*Period {
	out := make([]*Period, len(d.periods))
	copy(out, d.periods)
	return out
}

func (d *Day) Timelines() []*Timeline {
	out := make([]*Timeline, len(d.timelines))
	copy(out, d.timelines)
	return out
}

// Attach registers children and runs the SetParent handshake once per child,
// before the child computes anything that depends on geometry. A child
// already registered here is left alone; one owned by another Day is moved.
func (d *Day) Attach(children ...Child) {
	seen := make(map[Child]struct{}, len(children))
	periods := false
	for _, c := range children {
		if c == nil {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		switch c := c.(type) {
		case *Period:
			if d.attachPeriod(c) {
				periods = true
			}
		case *Timeline:
			d.attachTimeline(c)
		}
	}
	if periods {
		d.CheckIntersections()
	}
}

func (d *Day) attachPeriod(p *Period) bool {
	if d.indexOfPeriod(p) >= 0 {
		return false
	}
	if old := p.Parent(); old != nil && old != d {
		old.Detach(p)
	}

	d.periods = append(d.periods, p)
	p.SetParent(d)
	d.moved[p] = p.Subscribe(func(p *Period, ev Event) {
		if ev == Moved {
			p.CheckIntersection(d.periods)
		}
	})
	p.connect(d.doc)

	appLog.Debug("period attached", "id", p.ID(), "title", p.Title(), "start", p.Start(), "end", p.End())
	return true
}

func (d *Day) attachTimeline(t *Timeline) {
	for _, existing := range d.timelines {
		if existing == t {
			return
		}
	}
	if old := t.Parent(); old != nil && old != d {
		old.Detach(t)
	}
	d.timelines = append(d.timelines, t)
	t.SetParent(d)
}

// Detach unregisters children and removes every listener they installed.
func (d *Day) Detach(children ...Child) {
	periods := false
	for _, c := range children {
		switch c := c.(type) {
		case *Period:
			i := d.indexOfPeriod(c)
			if i < 0 {
				continue
			}
			d.periods = append(d.periods[:i:i], d.periods[i+1:]...)
			if cancel, ok := d.moved[c]; ok {
				cancel()
				delete(d.moved, c)
			}
			d.frames.Cancel(c)
			c.release()
			periods = true
			appLog.Debug("period detached", "id", c.ID(), "title", c.Title())
		case *Timeline:
			for i, t := range d.timelines {
				if t == c {
					d.timelines = append(d.timelines[:i:i], d.timelines[i+1:]...)
					c.release()
					break
				}
			}
		}
	}
	if periods {
		d.CheckIntersections()
	}
}

func (d *Day) indexOfPeriod(p *Period) int {
	for i, existing := range d.periods {
		if existing == p {
			return i
		}
	}
	return -1
}

// Relayout is the resize input. Timelines regenerate when pixelStep moved;
// Periods repaint on the next frame.
func (d *Day) Relayout() {
	step := d.PixelStep()
	if step != d.lastStep {
		appLog.Debug("day relayout", "pixel_step", step, "previous", d.lastStep, "height", d.Height())
		d.lastStep = step
		for _, t := range d.timelines {
			t.regenerate()
		}
	}
	for _, p := range d.periods {
		p.requestPaint()
	}
}

// Flush runs the paints deferred to this frame.
func (d *Day) Flush() { d.frames.Flush() }

// CheckIntersections re-marks conflicts across every attached Period.
func (d *Day) CheckIntersections() {
	if len(d.periods) == 0 {
		return
	}
	d.periods[0].CheckIntersection(d.periods)
}

// PeriodAt returns the topmost Period under a viewport point.
func (d *Day) PeriodAt(x, y float64) *Period {
	for i := len(d.periods) - 1; i >= 0; i-- {
		if d.periods[i].Contains(x, y) {
			return d.periods[i]
		}
	}
	return nil
}

// Dragging returns the Period currently being dragged, if any.
func (d *Day) Dragging() *Period {
	for _, p := range d.periods {
		if p.Dragging() {
			return p
		}
	}
	return nil
}

// Close detaches every child and drops the Day's own document listener.
func (d *Day) Close() {
	children := make([]Child, 0, len(d.periods)+len(d.timelines))
	for _, p := range d.periods {
		children = append(children, p)
	}
	for _, t := range d.timelines {
		children = append(children, t)
	}
	d.Detach(children...)
	if d.removeListener != nil {
		d.removeListener()
		d.removeListener = nil
	}
}

// Pointer-down is element scoped: only the Period under the pointer may
// start a drag. Move and up are handled by each Period's own listener.
func (d *Day) handlePointer(ev PointerEvent) {
	if ev.Kind != PointerDown {
		return
	}
	if p := d.PeriodAt(ev.X, ev.Y); p != nil {
		p.PointerDown(ev)
	}
}
