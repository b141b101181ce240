package agenda

// Page is an in-memory Document. Hosts feed it input through Dispatch and
// read the scroll offset back when they draw.
type Page struct {
	viewport  float64
	height    float64
	scrollTop float64

	nextID    int
	listeners []pageListener
}

type pageListener struct {
	id int
	fn PointerListener
}

var _ Document = (*Page)(nil)

func NewPage(viewportHeight, documentHeight float64) *Page {
	p := &Page{}
	p.Resize(viewportHeight, documentHeight)
	return p
}

// Resize updates both heights and re-clamps the scroll offset.
func (p *Page) Resize(viewportHeight, documentHeight float64) {
	p.viewport = max(viewportHeight, 0)
	p.height = max(documentHeight, 0)
	p.ScrollTo(p.scrollTop)
}

func (p *Page) ScrollTop() float64 { return p.scrollTop }

func (p *Page) ViewportHeight() float64 { return p.viewport }

func (p *Page) DocumentHeight() float64 { return p.height }

func (p *Page) ScrollBy(dy float64) { p.ScrollTo(p.scrollTop + dy) }

func (p *Page) ScrollTo(y float64) {
	limit := max(p.height-p.viewport, 0)
	p.scrollTop = min(max(y, 0), limit)
}

func (p *Page) AddPointerListener(fn PointerListener) func() {
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, pageListener{id: id, fn: fn})
	return func() {
		for i, l := range p.listeners {
			if l.id == id {
				p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners reports how many document listeners are installed.
func (p *Page) Listeners() int { return len(p.listeners) }

// Dispatch delivers ev to every listener registered at the time of the
// call. Listeners added or removed during delivery take effect next time.
func (p *Page) Dispatch(ev PointerEvent) {
	snapshot := make([]pageListener, len(p.listeners))
	copy(snapshot, p.listeners)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Column is a Layout pinned at a document position inside a Page; its
// viewport box follows the Page's scroll offset.
type Column struct {
	page *Page
	box  Rect
}

var _ Layout = (*Column)(nil)

// NewColumn places box, given in document coordinates, inside page.
func NewColumn(page *Page, box Rect) *Column {
	return &Column{page: page, box: box}
}

func (c *Column) ContentBox() Rect {
	r := c.box
	r.Top -= c.page.ScrollTop()
	return r
}

// SetBox moves or resizes the column. Callers follow up with Day.Relayout.
func (c *Column) SetBox(box Rect) { c.box = box }
