package agenda

import (
	"math"
	"testing"
)

// newTestDay builds a Day whose column starts at the top of a Page.
func newTestDay(t *testing.T, height, viewport float64) (*Day, *Page, *Column) {
	t.Helper()
	page := NewPage(viewport, height)
	col := NewColumn(page, Rect{Left: 0, Top: 0, Width: 100, Height: height})
	return NewDay(col, page), page, col
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPixelStepMatchesHeight(t *testing.T) {
	for _, h := range []float64{1, 96, 600, 1200, 1440, 1777.5} {
		d, _, _ := newTestDay(t, h, 500)
		if got := d.PixelStep() * float64(d.TotalMinutes()); !approx(got, h) {
			t.Errorf("height %v: pixelStep*total = %v", h, got)
		}
	}
}

func TestPixelStepFollowsResize(t *testing.T) {
	d, _, col := newTestDay(t, 1440, 500)
	if !approx(d.PixelStep(), 1) {
		t.Fatalf("pixelStep = %v, want 1", d.PixelStep())
	}
	col.SetBox(Rect{Width: 100, Height: 720})
	if !approx(d.PixelStep(), 0.5) {
		t.Fatalf("pixelStep after resize = %v, want 0.5", d.PixelStep())
	}
}

func TestTopIsDocumentRelative(t *testing.T) {
	page := NewPage(300, 2000)
	col := NewColumn(page, Rect{Top: 40, Width: 100, Height: 1440})
	d := NewDay(col, page)

	if d.Top() != 40 {
		t.Fatalf("Top = %v, want 40", d.Top())
	}
	page.ScrollTo(250)
	if got := col.ContentBox().Top; got != -210 {
		t.Fatalf("viewport top = %v, want -210", got)
	}
	if d.Top() != 40 {
		t.Fatalf("Top after scroll = %v, want 40", d.Top())
	}
}

func TestWithTotalMinutesIgnoresNonPositive(t *testing.T) {
	page := NewPage(100, 100)
	d := NewDay(FixedLayout{Height: 100}, page, WithTotalMinutes(0))
	if d.TotalMinutes() != MinutesPerDay {
		t.Fatalf("TotalMinutes = %d", d.TotalMinutes())
	}
	d = NewDay(FixedLayout{Height: 100}, page, WithTotalMinutes(600))
	if d.TotalMinutes() != 600 {
		t.Fatalf("TotalMinutes = %d", d.TotalMinutes())
	}
}

func TestAttachPaintsBeforeFirstFrame(t *testing.T) {
	d, _, _ := newTestDay(t, 1200, 600)
	p := NewPeriod(WithStart(60), WithDuration(90))
	d.Attach(p)

	v := p.View()
	if !approx(v.Top, 50) || !approx(v.Height, 75) {
		t.Fatalf("view = %+v, want top 50 height 75", v)
	}
	if v.Range != "01:00 – 02:30" || v.Duration != "1h30" {
		t.Fatalf("labels = %q / %q", v.Range, v.Duration)
	}
	if !p.Initialized() {
		t.Fatalf("expected period to be initialized")
	}
}

func TestAttachRegistersOncePerEvent(t *testing.T) {
	d, page, _ := newTestDay(t, 1440, 600)
	p := NewPeriod()
	tl := NewTimeline(60)

	d.Attach(p, p, tl, tl)
	if got := len(d.Periods()); got != 1 {
		t.Fatalf("periods = %d, want 1", got)
	}
	if got := len(d.Timelines()); got != 1 {
		t.Fatalf("timelines = %d, want 1", got)
	}
	// the Day's own listener plus one per period
	if got := page.Listeners(); got != 2 {
		t.Fatalf("listeners = %d, want 2", got)
	}

	d.Attach(p)
	if got := page.Listeners(); got != 2 {
		t.Fatalf("listeners after repeat attach = %d, want 2", got)
	}
}

func TestReattachRepeatsHandshake(t *testing.T) {
	d, page, _ := newTestDay(t, 1440, 600)
	p := NewPeriod(WithStart(120))

	d.Attach(p)
	d.Detach(p)
	if p.Parent() != nil {
		t.Fatalf("detached period still has a parent")
	}
	if page.Listeners() != 1 {
		t.Fatalf("listeners after detach = %d, want 1", page.Listeners())
	}
	if _, err := p.Positions(); err != ErrNoParent {
		t.Fatalf("Positions on detached period: %v", err)
	}

	d.Attach(p)
	if p.Parent() != d {
		t.Fatalf("reattach did not rebind parent")
	}
	if !approx(p.View().Top, 120) {
		t.Fatalf("top after reattach = %v", p.View().Top)
	}
}

func TestAttachToSecondDayMovesPeriod(t *testing.T) {
	page := NewPage(600, 1440)
	a := NewDay(NewColumn(page, Rect{Width: 100, Height: 1440}), page)
	b := NewDay(NewColumn(page, Rect{Left: 100, Width: 100, Height: 720}), page)
	p := NewPeriod(WithStart(120), WithDuration(60))

	a.Attach(p)
	b.Attach(p)

	if len(a.Periods()) != 0 || len(b.Periods()) != 1 {
		t.Fatalf("period not moved: a=%d b=%d", len(a.Periods()), len(b.Periods()))
	}
	if p.Parent() != b {
		t.Fatalf("parent is not the second day")
	}
	if !approx(p.View().Top, 60) || !approx(p.View().Height, 30) {
		t.Fatalf("geometry not rebound: %+v", p.View())
	}
	// two day listeners plus the period's single listener
	if page.Listeners() != 3 {
		t.Fatalf("listeners = %d, want 3", page.Listeners())
	}
}

func TestSetParentIsIdempotent(t *testing.T) {
	d, _, _ := newTestDay(t, 1200, 600)
	p := NewPeriod(WithStart(300), WithDuration(45))
	d.Attach(p)

	p.SetParent(d)
	p.SetParent(d)
	if p.Start() != 300 || p.End() != 345 || p.Duration() != 45 {
		t.Fatalf("state changed: %d-%d (%d)", p.Start(), p.End(), p.Duration())
	}
	if !approx(p.View().Top, 250) {
		t.Fatalf("top = %v, want 250", p.View().Top)
	}
}

func TestShorterDayPullsPeriodInside(t *testing.T) {
	page := NewPage(600, 600)
	d := NewDay(NewColumn(page, Rect{Width: 100, Height: 600}), page, WithTotalMinutes(600))
	p := NewPeriod(WithStart(560), WithDuration(90))
	d.Attach(p)
	if p.Start() != 510 || p.End() != 600 {
		t.Fatalf("period = %d-%d, want 510-600", p.Start(), p.End())
	}
}

func TestTimelineMarks(t *testing.T) {
	d, _, _ := newTestDay(t, 1200, 600)
	tl := NewTimeline(0)
	d.Attach(tl)

	marks := tl.Marks()
	if len(marks) != 25 {
		t.Fatalf("marks = %d, want 25", len(marks))
	}
	if marks[0].Label != "00:00" || marks[24].Label != "24:00" {
		t.Fatalf("labels = %q..%q", marks[0].Label, marks[24].Label)
	}
	if !approx(marks[1].Offset, 50) || !approx(marks[24].Offset, 1200) {
		t.Fatalf("offsets = %v, %v", marks[1].Offset, marks[24].Offset)
	}

	half := NewTimeline(30)
	d.Attach(half)
	if got := len(half.Marks()); got != 49 {
		t.Fatalf("half-hour marks = %d, want 49", got)
	}
}

func TestRelayoutRegeneratesChildren(t *testing.T) {
	d, _, col := newTestDay(t, 1440, 600)
	tl := NewTimeline(60)
	p := NewPeriod(WithStart(60), WithDuration(60))
	d.Attach(tl, p)

	col.SetBox(Rect{Width: 100, Height: 720})
	d.Relayout()

	if got := tl.Marks()[1].Offset; !approx(got, 30) {
		t.Fatalf("timeline offset after relayout = %v, want 30", got)
	}
	if got := p.View().Top; !approx(got, 60) {
		t.Fatalf("period painted before frame: top = %v", got)
	}
	d.Flush()
	if got := p.View(); !approx(got.Top, 30) || !approx(got.Height, 30) {
		t.Fatalf("period after flush = %+v", got)
	}
}

func TestPeriodAtPicksTopmost(t *testing.T) {
	d, _, _ := newTestDay(t, 1440, 1440)
	under := NewPeriod(WithStart(0), WithDuration(120))
	over := NewPeriod(WithStart(60), WithDuration(120))
	d.Attach(under, over)

	if got := d.PeriodAt(10, 90); got != over {
		t.Fatalf("PeriodAt(10,90) picked %v", got)
	}
	if got := d.PeriodAt(10, 30); got != under {
		t.Fatalf("PeriodAt(10,30) picked %v", got)
	}
	if got := d.PeriodAt(150, 30); got != nil {
		t.Fatalf("PeriodAt outside column picked %v", got)
	}
}

func TestCloseRemovesEveryListener(t *testing.T) {
	d, page, _ := newTestDay(t, 1440, 600)
	d.Attach(NewPeriod(), NewPeriod(WithStart(200)), NewTimeline(60))
	if page.Listeners() != 3 {
		t.Fatalf("listeners = %d, want 3", page.Listeners())
	}
	d.Close()
	if page.Listeners() != 0 {
		t.Fatalf("listeners after close = %d, want 0", page.Listeners())
	}
	if len(d.Periods()) != 0 || len(d.Timelines()) != 0 {
		t.Fatalf("children left after close")
	}
}
