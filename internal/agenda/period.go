package agenda

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"weak"

	"github.com/google/uuid"

	appLog "dayplan/internal/log"
)

var (
	ErrNoParent    = errors.New("period is not attached to a day")
	ErrInvalidAttr = errors.New("invalid period attribute")
)

type Event int

const (
	// Moved fires when start or end changes, by drag or by a setter.
	Moved Event = iota
	Retitled
	// Conflict fires when the intersecting flag flips.
	Conflict
)

func (e Event) String() string {
	switch e {
	case Moved:
		return "moved"
	case Retitled:
		return "retitled"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

type Listener func(p *Period, ev Event)

// View is what the last paint produced.
type View struct {
	Top      float64
	Height   float64
	Title    string
	Range    string
	Duration string
	Conflict bool
}

// Positions is the geometry snapshot a drag step works from.
type Positions struct {
	DocumentTop  float64
	ParentTop    float64
	ParentHeight float64
	ParentBottom float64
	SelfHeight   float64
}

type Period struct {
	id       string
	title    string
	start    int
	end      int
	duration int

	parent         weak.Pointer[Day]
	removeListener func()

	dragging   bool
	dragOffset float64
	direction  Direction
	offset     float64

	intersecting bool
	view         View

	nextSub int
	subs    []periodSub
}

type periodSub struct {
	id int
	fn Listener
}

var _ Child = (*Period)(nil)

type PeriodOption func(*periodConfig)

type periodConfig struct {
	title    string
	start    int
	duration int
	end      int
	hasEnd   bool
}

func WithTitle(title string) PeriodOption {
	return func(s *periodConfig) { s.title = title }
}

func WithStart(m int) PeriodOption {
	return func(s *periodConfig) { s.start = m }
}

func WithDuration(m int) PeriodOption {
	return func(s *periodConfig) { s.duration = m }
}

// WithEnd wins over WithDuration.
func WithEnd(m int) PeriodOption {
	return func(s *periodConfig) {
		s.end = m
		s.hasEnd = true
	}
}

func NewPeriod(opts ...PeriodOption) *Period {
	cfg := periodConfig{duration: DefaultDuration}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := clamp(cfg.start, 0, MinutesPerDay)
	duration := max(cfg.duration, 0)
	if cfg.hasEnd {
		duration = max(cfg.end-start, 0)
	}
	end := min(start+duration, MinutesPerDay)

	p := &Period{
		id:       uuid.NewString(),
		title:    cfg.title,
		start:    start,
		end:      end,
		duration: end - start,
	}
	p.view = p.describe(0, 0)
	return p
}

func (p *Period) ID() string { return p.id }
func (p *Period) Title() string { return p.title }
func (p *Period) Start() int { return p.start }
func (p *Period) End() int { return p.end }
func (p *Period) Duration() int { return p.duration }
func (p *Period) Dragging() bool { return p.dragging }
func (p *Period) Direction() Direction { return p.direction }
func (p *Period) Intersecting() bool { return p.intersecting }
func (p *Period) View() View { return p.view }

// Parent returns the attached Day or nil.
func (p *Period) Parent() *Day { return p.parent.Value() }

// Initialized reports whether geometry-dependent operations can run.
func (p *Period) Initialized() bool {
	return p.Parent() != nil && p.duration > 0
}

// SetParent binds the Period to d and paints it immediately. Calling it
// again with the same Day only re-derives pixel positions.
func (p *Period) SetParent(d *Day) {
	if d == nil {
		return
	}
	p.parent = weak.Make(d)
	p.fit(d.TotalMinutes())
	p.paint()
}

func (p *Period) totalMinutes() int {
	if d := p.Parent(); d != nil {
		return d.TotalMinutes()
	}
	return MinutesPerDay
}

// fit pulls the interval inside a Day that is shorter than the Period.
func (p *Period) fit(total int) {
	if p.end <= total {
		return
	}
	p.duration = min(p.duration, total)
	p.start = total - p.duration
	p.end = total
	p.changed(Moved)
}

// SetStart moves the Period, keeping its duration. The value is clamped to
// the Day but not snapped.
func (p *Period) SetStart(m int) {
	m = clamp(m, 0, p.totalMinutes()-p.duration)
	if m == p.start {
		return
	}
	p.start = m
	p.end = m + p.duration
	p.changed(Moved)
}

// SetEnd resizes the Period; start stays put.
func (p *Period) SetEnd(m int) {
	m = clamp(m, p.start, p.totalMinutes())
	if m == p.end {
		return
	}
	p.end = m
	p.duration = m - p.start
	p.changed(Moved)
}

func (p *Period) SetDuration(m int) { p.SetEnd(p.start + m) }

func (p *Period) SetTitle(title string) {
	if title == p.title {
		return
	}
	p.title = title
	p.changed(Retitled)
}

// SetAttr is the string-typed path used by declarative sources and forms.
// Values that do not parse leave the Period untouched.
func (p *Period) SetAttr(name, value string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		p.SetTitle(value)
	case "start":
		m, err := ParseClock(value)
		if err != nil {
			return p.rejectAttr(name, value, err)
		}
		p.SetStart(m)
	case "end":
		m, err := ParseClock(value)
		if err != nil {
			return p.rejectAttr(name, value, err)
		}
		p.SetEnd(m)
	case "duration":
		m, err := ParseClock(value)
		if err != nil {
			return p.rejectAttr(name, value, err)
		}
		p.SetDuration(m)
	default:
		return fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttr, name)
	}
	return nil
}

func (p *Period) rejectAttr(name, value string, cause error) error {
	appLog.Debug("period attribute ignored", "id", p.id, "attr", name, "value", value)
	return fmt.Errorf("%w: %s=%q: %v", ErrInvalidAttr, name, value, cause)
}

// Subscribe registers fn for change notifications.
func (p *Period) Subscribe(fn Listener) (cancel func()) {
	p.nextSub++
	id := p.nextSub
	p.subs = append(p.subs, periodSub{id: id, fn: fn})
	return func() {
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Period) emit(ev Event) {
	subs := make([]periodSub, len(p.subs))
	copy(subs, p.subs)
	for _, s := range subs {
		s.fn(p, ev)
	}
}

func (p *Period) changed(ev Event) {
	p.requestPaint()
	p.emit(ev)
}

// Positions snapshots the geometry a drag step needs.
func (p *Period) Positions() (Positions, error) {
	d := p.Parent()
	if d == nil {
		return Positions{}, ErrNoParent
	}
	top := d.Top()
	height := d.Height()
	return Positions{
		DocumentTop:  d.Document().ScrollTop(),
		ParentTop:    top,
		ParentHeight: height,
		ParentBottom: top + height,
		SelfHeight:   float64(p.duration) * d.PixelStep(),
	}, nil
}

// Contains reports whether a viewport point falls inside the Period's box.
func (p *Period) Contains(x, y float64) bool {
	d := p.Parent()
	if d == nil {
		return false
	}
	box := d.Box()
	step := d.PixelStep()
	top := box.Top + float64(p.start)*step
	bottom := top + float64(p.duration)*step
	return x >= box.Left && x < box.Right() && y >= top && y < bottom
}

// PointerDown starts a drag when ev lands inside the box. The pointer's
// offset within the box is kept so the box does not jump under it.
func (p *Period) PointerDown(ev PointerEvent) bool {
	d := p.Parent()
	if d == nil || p.duration <= 0 || !p.Contains(ev.X, ev.Y) {
		return false
	}
	pageY := ev.Y + d.Document().ScrollTop()
	p.dragOffset = pageY - (d.Top() + float64(p.start)*d.PixelStep())
	p.dragging = true
	p.direction = DirNone
	appLog.Debug("drag start", "id", p.id, "title", p.title, "offset", p.dragOffset)
	return true
}

// PointerMove runs one drag step.
func (p *Period) PointerMove(ev PointerEvent) {
	if !p.dragging {
		return
	}
	pos, err := p.Positions()
	if err != nil {
		// detached mid-gesture
		return
	}
	pageY := ev.Y + pos.DocumentTop
	if p.moveTo(pageY-pos.ParentTop-p.dragOffset, pos) {
		p.scrollIntoView(pos)
	}
}

// PointerUp ends a drag wherever the pointer is.
func (p *Period) PointerUp(PointerEvent) {
	if !p.dragging {
		return
	}
	p.dragging = false
	p.dragOffset = 0
	p.direction = DirNone
	appLog.Debug("drag end", "id", p.id, "start", p.start, "end", p.end)
}

// moveTo snaps a content-local offset to the 15 minute grid, clamps it to
// the Day and publishes the new start. It reports whether anything moved.
func (p *Period) moveTo(offset float64, pos Positions) bool {
	d := p.Parent()
	if d == nil || pos.ParentHeight <= 0 {
		return false
	}
	step := d.PixelStep() * SnapMinutes
	if step <= 0 {
		return false
	}
	offset = snap(offset, step)
	if sameOffset(offset, p.offset) {
		return false
	}

	if offset < 0 {
		offset = 0
	}
	if pos.ParentTop+offset+pos.SelfHeight > pos.ParentBottom {
		offset = pos.ParentHeight - pos.SelfHeight
	}
	if sameOffset(offset, p.offset) {
		return false
	}

	switch {
	case offset < p.offset:
		p.direction = DirUp
	case offset > p.offset:
		p.direction = DirDown
	}

	start := int(math.Round(float64(d.TotalMinutes()) * offset / pos.ParentHeight))
	start = clamp(start, 0, d.TotalMinutes()-p.duration)
	p.offset = offset
	p.start = start
	p.end = start + p.duration
	p.changed(Moved)
	return true
}

// scrollIntoView follows the box past the viewport edge it is moving
// toward. Moving toward a still visible edge never scrolls.
func (p *Period) scrollIntoView(pos Positions) {
	d := p.Parent()
	if d == nil {
		return
	}
	doc := d.Document()
	top := pos.ParentTop - doc.ScrollTop() + p.offset
	bottom := top + pos.SelfHeight

	if top < 0 && p.direction == DirUp {
		doc.ScrollBy(top)
		return
	}
	if overflow := bottom - doc.ViewportHeight(); overflow > 0 && p.direction == DirDown {
		doc.ScrollBy(overflow)
	}
}

func (p *Period) requestPaint() {
	if d := p.Parent(); d != nil {
		d.Frames().Request(p, p.paint)
	}
}

// paint reads the current state; a deferred paint never uses a snapshot
// from when it was queued.
func (p *Period) paint() {
	d := p.Parent()
	if d == nil {
		return
	}
	step := d.PixelStep()
	p.offset = float64(p.start) * step
	p.view = p.describe(p.offset, float64(p.duration)*step)
}

func (p *Period) describe(top, height float64) View {
	return View{
		Top:      top,
		Height:   height,
		Title:    p.title,
		Range:    MinutesToLabel(p.start) + " – " + MinutesToLabel(p.end),
		Duration: DurationLabel(p.duration),
		Conflict: p.intersecting,
	}
}

func (p *Period) connect(doc Document) {
	if p.removeListener != nil {
		p.removeListener()
	}
	p.removeListener = doc.AddPointerListener(p.handlePointer)
}

func (p *Period) handlePointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerMove:
		p.PointerMove(ev)
	case PointerUp:
		p.PointerUp(ev)
	}
}

func (p *Period) release() {
	if p.removeListener != nil {
		p.removeListener()
		p.removeListener = nil
	}
	p.parent = weak.Pointer[Day]{}
	p.dragging = false
	p.dragOffset = 0
	p.direction = DirNone
	p.intersecting = false
	p.view.Conflict = false
}

func (p *Period) setIntersecting(v bool) {
	if v == p.intersecting {
		return
	}
	p.intersecting = v
	p.changed(Conflict)
}

// snap truncates offset to a whole number of steps, treating values within
// float noise of a step boundary as on it.
func snap(offset, step float64) float64 {
	q := offset / step
	if r := math.Round(q); math.Abs(q-r) < 1e-6 {
		return r * step
	}
	return math.Trunc(q) * step
}

func sameOffset(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
