package agenda

// Frames batches paint work until the host's next frame. A key holds at most
// one pending paint; the paint itself reads whatever state is current when
// Flush runs.
type Frames struct {
	order   []any
	pending map[any]func()
}

func NewFrames() *Frames {
	return &Frames{pending: make(map[any]func())}
}

func (f *Frames) Request(key any, paint func()) {
	if _, ok := f.pending[key]; ok {
		return
	}
	f.pending[key] = paint
	f.order = append(f.order, key)
}

func (f *Frames) Cancel(key any) {
	if _, ok := f.pending[key]; !ok {
		return
	}
	delete(f.pending, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i:i], f.order[i+1:]...)
			break
		}
	}
}

func (f *Frames) Pending() int { return len(f.order) }

// Flush runs queued paints in request order. Paints requested while
// flushing wait for the next frame.
func (f *Frames) Flush() {
	order := f.order
	pending := f.pending
	f.order = nil
	f.pending = make(map[any]func())
	for _, k := range order {
		pending[k]()
	}
}
