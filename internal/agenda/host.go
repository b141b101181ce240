package agenda

// Rect is a box in viewport coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Bottom() float64 { return r.Top + r.Height }

func (r Rect) Right() float64 { return r.Left + r.Width }

// Layout is whatever lays the Day's content column out. The Day never
// decides its own size; it re-reads the box on every geometry access.
type Layout interface {
	ContentBox() Rect
}

// FixedLayout is a Layout whose box never moves.
type FixedLayout Rect

func (f FixedLayout) ContentBox() Rect { return Rect(f) }

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent carries viewport coordinates.
type PointerEvent struct {
	Kind PointerKind
	X    float64
	Y    float64
}

type PointerListener func(PointerEvent)

// Document is the scrolling surface the Day lives in.
type Document interface {
	ScrollTop() float64
	ViewportHeight() float64
	ScrollBy(dy float64)
	// AddPointerListener registers a document-scoped listener. The returned
	// func removes it and is safe to call more than once.
	AddPointerListener(fn PointerListener) (remove func())
}
