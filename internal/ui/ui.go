package ui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"dayplan/internal/agenda"
	"dayplan/internal/config"
	appLog "dayplan/internal/log"
)

type mode int

const (
	modeDay mode = iota
	modeAdd
	modeEdit
)

const (
	// gutter holds the ruler label and the column edge.
	gutter      = 7
	headerLines = 2
	minRows     = 1
	maxRows     = 12
	wheelStep   = 3
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	rulerStyle    = lipgloss.NewStyle().Faint(true)
	periodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("31")).Bold(true)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124"))
	statusStyle   = lipgloss.NewStyle().Italic(true)
)

// board is the state shared by every copy of Model: the Day, its Page and
// the subscriptions that feed the status line.
type board struct {
	page     *agenda.Page
	col      *agenda.Column
	day      *agenda.Day
	timeline *agenda.Timeline
	subs     map[*agenda.Period]func()
	feed     string
}

type formState struct {
	period *agenda.Period
	title  string
	start  string
	end    string
	index  int
}

type Model struct {
	cfg         config.Config
	date        time.Time
	board       *board
	selected    *agenda.Period
	rowsPerHour int
	width       int
	height      int
	mode        mode
	input       textinput.Model
	status      string
	confirmDel  bool
	pendingDel  *agenda.Period
	form        *formState
}

// Run opens the day in the terminal until the user quits.
func Run(cfg config.Config, periods []*agenda.Period, date time.Time) error {
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(config.ExpandPath(cfg.LogFile), "dayplan")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		appLog.SetOutput(f)
	} else {
		appLog.SetOutput(io.Discard)
	}

	m := NewModel(cfg, periods, date)
	defer m.board.close()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}

func NewModel(cfg config.Config, periods []*agenda.Period, date time.Time) Model {
	ti := textinput.New()
	ti.Placeholder = "Period title"
	ti.CharLimit = 128
	ti.Width = 40

	rows := cfg.RowsPerHour
	if rows <= 0 {
		rows = config.DefaultRowsPerHour
	}

	m := Model{
		cfg:         cfg,
		date:        date,
		rowsPerHour: min(max(rows, minRows), maxRows),
		width:       80,
		height:      24,
		input:       ti,
		mode:        modeDay,
		status:      "Drag a period with the mouse. Press 'a' to add, 'e' to edit.",
	}

	page := agenda.NewPage(1, 1)
	col := agenda.NewColumn(page, agenda.Rect{})
	m.board = &board{
		page:     page,
		col:      col,
		day:      agenda.NewDay(col, page),
		timeline: agenda.NewTimeline(cfg.TimelineInterval),
		subs:     make(map[*agenda.Period]func()),
	}
	m.relayout()
	m.board.day.Attach(m.board.timeline)
	for _, p := range periods {
		m.board.attach(p)
	}
	if ps := m.board.day.Periods(); len(ps) > 0 {
		m.selected = ps[0]
	}
	m.board.day.Flush()
	return m
}

func (b *board) attach(p *agenda.Period) {
	b.day.Attach(p)
	b.subs[p] = p.Subscribe(func(p *agenda.Period, ev agenda.Event) {
		switch ev {
		case agenda.Moved:
			// Moved is delivered after the Conflict events it caused
			b.feed = fmt.Sprintf("%s moved to %s", titleOf(p), rangeOf(p))
			if p.Intersecting() {
				b.feed += ", overlaps " + titles(agenda.Conflicts(p, b.day.Periods()))
			}
		case agenda.Conflict:
			if p.Intersecting() {
				b.feed = fmt.Sprintf("%s overlaps %s", titleOf(p), titles(agenda.Conflicts(p, b.day.Periods())))
			}
		}
	})
}

func (b *board) detach(p *agenda.Period) {
	if cancel, ok := b.subs[p]; ok {
		cancel()
		delete(b.subs, p)
	}
	b.day.Detach(p)
}

func (b *board) close() {
	for p, cancel := range b.subs {
		cancel()
		delete(b.subs, p)
	}
	b.day.Close()
}

// takeFeed returns the latest notification once.
func (b *board) takeFeed() string {
	s := b.feed
	b.feed = ""
	return s
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var next tea.Model = m
	m.board.feed = ""
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.form != nil:
			next, cmd = m.updateEditMode(msg.String(), msg)
		case m.confirmDel:
			next, cmd = m.updateDeleteConfirm(msg.String())
		case m.mode == modeAdd:
			next, cmd = m.updateAddMode(msg.String(), msg)
		default:
			next, cmd = m.updateDayMode(msg.String())
		}
	case tea.MouseMsg:
		next = m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-10, 10)
		m.relayout()
		next = m
	}

	nm := next.(Model)
	nm.board.day.Flush()
	// drags report through the feed; key handlers set their own status
	if _, ok := msg.(tea.MouseMsg); ok {
		if feed := nm.board.takeFeed(); feed != "" {
			nm.status = feed
		}
	}
	return nm, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	b := m.board
	ev := agenda.PointerEvent{X: float64(msg.X), Y: float64(msg.Y - headerLines)}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			b.page.ScrollBy(-wheelStep)
			return m
		case tea.MouseButtonWheelDown:
			b.page.ScrollBy(wheelStep)
			return m
		case tea.MouseButtonLeft:
			if m.form != nil || m.confirmDel || m.mode != modeDay {
				return m
			}
			ev.Kind = agenda.PointerDown
			b.page.Dispatch(ev)
			if p := b.day.Dragging(); p != nil {
				m.selected = p
				m.status = fmt.Sprintf("Dragging %s", titleOf(p))
			}
		}
	case tea.MouseActionMotion:
		ev.Kind = agenda.PointerMove
		b.page.Dispatch(ev)
	case tea.MouseActionRelease:
		dragged := b.day.Dragging()
		ev.Kind = agenda.PointerUp
		b.page.Dispatch(ev)
		if dragged != nil {
			m.status = fmt.Sprintf("%s at %s", titleOf(dragged), rangeOf(dragged))
		}
	}
	return m
}

func (m Model) updateDayMode(key string) (tea.Model, tea.Cmd) {
	b := m.board
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		b.page.ScrollBy(1)
	case m.cfg.Keys.Up, "up":
		b.page.ScrollBy(-1)
	case "pgdown":
		b.page.ScrollBy(b.page.ViewportHeight())
	case "pgup":
		b.page.ScrollBy(-b.page.ViewportHeight())
	case m.cfg.Keys.Next:
		m.selectOffset(1)
	case m.cfg.Keys.Prev:
		m.selectOffset(-1)
	case m.cfg.Keys.ZoomIn:
		if m.cfg.Fit {
			m.status = "Zoom is off while fit = true"
			return m, nil
		}
		m.rowsPerHour = min(m.rowsPerHour+1, maxRows)
		m.relayout()
		m.status = fmt.Sprintf("%d rows per hour", m.rowsPerHour)
	case m.cfg.Keys.ZoomOut:
		if m.cfg.Fit {
			m.status = "Zoom is off while fit = true"
			return m, nil
		}
		m.rowsPerHour = max(m.rowsPerHour-1, minRows)
		m.relayout()
		m.status = fmt.Sprintf("%d rows per hour", m.rowsPerHour)
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "Period title"
		m.relayout()
		m.status = "Add mode: type a title and press Enter"
		return m, m.input.Focus()
	case m.cfg.Keys.Edit:
		if m.selected == nil {
			m.status = "No period to edit"
			return m, nil
		}
		return m.startEdit(m.selected)
	case m.cfg.Keys.Delete:
		if m.selected == nil {
			m.status = "No period selected"
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = m.selected
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", titleOf(m.selected))
	}
	return m, nil
}

func (m *Model) selectOffset(delta int) {
	ps := m.board.day.Periods()
	if len(ps) == 0 {
		m.selected = nil
		m.status = "No periods"
		return
	}
	cur := indexOf(ps, m.selected)
	if cur < 0 {
		cur = 0
	} else {
		cur = wrapIndex(cur+delta, len(ps))
	}
	m.selected = ps[cur]
	m.scrollTo(m.selected)
	m.status = fmt.Sprintf("%s %s", titleOf(m.selected), rangeOf(m.selected))
}

// scrollTo brings p into the viewport when it is not fully visible.
func (m *Model) scrollTo(p *agenda.Period) {
	page := m.board.page
	step := m.board.day.PixelStep()
	top := float64(p.Start()) * step
	bottom := float64(p.End()) * step
	switch {
	case top < page.ScrollTop():
		page.ScrollTo(top)
	case bottom > page.ScrollTop()+page.ViewportHeight():
		page.ScrollTo(min(top, bottom-page.ViewportHeight()))
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeDay
		m.input.SetValue("")
		m.input.Blur()
		m.relayout()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		p := agenda.NewPeriod(
			agenda.WithTitle(title),
			agenda.WithStart(m.nextFreeStart()),
			agenda.WithDuration(m.cfg.DefaultDuration),
		)
		m.board.attach(p)
		m.selected = p
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeDay
		m.relayout()
		m.scrollTo(p)
		m.status = fmt.Sprintf("Added %s at %s", title, rangeOf(p))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// nextFreeStart places a new Period after the selection, or at the first
// quarter hour in view.
func (m Model) nextFreeStart() int {
	if m.selected != nil {
		return m.selected.End()
	}
	step := m.board.day.PixelStep()
	if step <= 0 {
		return 0
	}
	minute := int(math.Ceil(m.board.page.ScrollTop() / step))
	return (minute + agenda.SnapMinutes - 1) / agenda.SnapMinutes * agenda.SnapMinutes
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		ps := m.board.day.Periods()
		idx := indexOf(ps, m.pendingDel)
		title := titleOf(m.pendingDel)
		m.board.detach(m.pendingDel)

		ps = m.board.day.Periods()
		m.selected = nil
		if len(ps) > 0 {
			m.selected = ps[clampCursor(idx, len(ps))]
		}
		m.status = fmt.Sprintf("Deleted %s", title)
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) startEdit(p *agenda.Period) (tea.Model, tea.Cmd) {
	m.form = &formState{
		period: p,
		title:  p.Title(),
		start:  agenda.MinutesToLabel(p.Start()),
		end:    agenda.MinutesToLabel(p.End()),
	}
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.mode = modeEdit
	m.relayout()
	m.status = m.formPrompt()
	return m, m.input.Focus()
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeDay
		m.input.Blur()
		m.relayout()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+1, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.status = m.formPrompt()
		return m, nil
	case "shift+tab", "up":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index-1, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.status = m.formPrompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveEdit()
		}
		m.form.index++
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.status = m.formPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// saveEdit checks every field before applying any, so a rejected value
// leaves the Period as it was.
func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	f := m.form
	start, err := agenda.ParseClock(f.start)
	if err != nil {
		m.status = fmt.Sprintf("start invalid: %v", err)
		return m, nil
	}
	end, err := agenda.ParseClock(f.end)
	if err != nil {
		m.status = fmt.Sprintf("end invalid: %v", err)
		return m, nil
	}
	if end < start {
		m.status = "end must not be before start"
		return m, nil
	}

	p := f.period
	// start and duration are applied in the order that never pushes the
	// interval against the end of the day halfway through
	attrs := [][2]string{
		{"title", strings.TrimSpace(f.title)},
		{"start", f.start},
		{"duration", fmt.Sprint(end - start)},
	}
	if start > p.Start() {
		attrs[1], attrs[2] = attrs[2], attrs[1]
	}
	for _, attr := range attrs {
		if err := p.SetAttr(attr[0], attr[1]); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
	}

	m.form = nil
	m.mode = modeDay
	m.input.Blur()
	m.relayout()
	m.scrollTo(p)
	m.status = fmt.Sprintf("Saved %s %s", titleOf(p), rangeOf(p))
	return m, nil
}

func formFields() []string {
	return []string{"title", "start (HH:MM)", "end (HH:MM)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.title
	case 1:
		return fs.start
	case 2:
		return fs.end
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.title = v
	case 1:
		fs.start = v
	case 2:
		fs.end = v
	}
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	values := []string{m.form.title, m.form.start, m.form.end}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-14s : %s\n", prefix, name, val))
	}
	return b.String()
}

// chromeLines is everything around the day column.
func (m Model) chromeLines() int {
	n := headerLines + 2
	switch {
	case m.form != nil:
		n += len(formFields()) + 1
	case m.mode == modeAdd:
		n++
	}
	return n
}

// relayout recomputes the column from the window and zoom, then lets the
// Day regenerate against it.
func (m Model) relayout() {
	b := m.board
	vh := max(m.height-m.chromeLines(), 1)
	docHeight := m.rowsPerHour * 24
	if m.cfg.Fit {
		docHeight = vh
	}
	b.page.Resize(float64(vh), float64(docHeight))
	b.col.SetBox(agenda.Rect{
		Left:   gutter,
		Top:    0,
		Width:  float64(max(m.width-gutter, 1)),
		Height: float64(docHeight),
	})
	b.day.Relayout()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	vh := max(m.height-m.chromeLines(), 1)
	vp := viewport.New(m.width, vh)
	vp.SetContent(m.renderDay())
	vp.SetYOffset(int(math.Round(m.board.page.ScrollTop())))
	b.WriteString(vp.View())
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(m.renderFormBox())
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.mode == modeAdd {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(truncate.String(m.status, uint(max(m.width, 1)))))
	b.WriteString("\n")
	b.WriteString(truncate.String(renderHelp(m.cfg.Keys), uint(max(m.width, 1))))

	return b.String()
}

func (m Model) header() string {
	ps := m.board.day.Periods()
	conflicts := 0
	for _, p := range ps {
		if p.Intersecting() {
			conflicts++
		}
	}
	h := fmt.Sprintf("dayplan  %s  %d periods", m.date.Format("Mon 02 Jan 2006"), len(ps))
	if conflicts > 0 {
		h += fmt.Sprintf("  %d overlapping", conflicts)
	}
	return h
}

// renderDay draws the whole document; the viewport crops it to the scroll
// offset. Where Periods overlap the one attached last is drawn on top.
func (m Model) renderDay() string {
	b := m.board
	rows := int(math.Round(b.page.DocumentHeight()))
	colWidth := max(m.width-gutter, 1)

	labels := make(map[int]string)
	for _, mk := range b.timeline.Marks() {
		r := int(math.Round(mk.Offset))
		if _, ok := labels[r]; !ok && r < rows {
			labels[r] = mk.Label
		}
	}

	owner := make([]*agenda.Period, rows)
	tops := make(map[*agenda.Period]int)
	for _, p := range b.day.Periods() {
		v := p.View()
		top := int(math.Round(v.Top))
		bottom := max(int(math.Round(v.Top+v.Height)), top+1)
		tops[p] = top
		for r := max(top, 0); r < min(bottom, rows); r++ {
			owner[r] = p
		}
	}

	lines := make([]string, rows)
	for r := range rows {
		label, mark := labels[r], "│"
		if _, ok := labels[r]; ok {
			mark = "┤"
		}
		prefix := rulerStyle.Render(fmt.Sprintf("%-5s %s", label, mark))

		p := owner[r]
		if p == nil {
			lines[r] = prefix
			continue
		}
		lines[r] = prefix + m.renderCell(p, r-tops[p], colWidth)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCell(p *agenda.Period, row, width int) string {
	v := p.View()
	var text string
	switch row {
	case 0:
		text = titleOf(p)
		if p == m.selected {
			text = "> " + text
		}
		if v.Height < 2 {
			text += "  " + v.Range
		}
	case 1:
		text = v.Range + " (" + v.Duration + ")"
		if v.Conflict {
			text += "  overlaps"
		}
	}
	text = truncate.String(" "+text, uint(width))

	style := periodStyle
	switch {
	case v.Conflict:
		style = conflictStyle
	case p == m.selected:
		style = selectedStyle
	}
	if p == m.selected {
		style = style.Bold(true)
	}
	return style.Width(width).Render(text)
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("mouse drag • %s/%s scroll • %s/%s select • %s add • %s edit • %s delete • %s/%s zoom • %s quit",
		k.Up, k.Down, k.Next, k.Prev, k.Add, k.Edit, k.Delete, k.ZoomIn, k.ZoomOut, k.Quit)
}

func titleOf(p *agenda.Period) string {
	if p.Title() == "" {
		return "(untitled)"
	}
	return p.Title()
}

func rangeOf(p *agenda.Period) string {
	return agenda.MinutesToLabel(p.Start()) + " – " + agenda.MinutesToLabel(p.End())
}

func titles(ps []*agenda.Period) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, titleOf(p))
	}
	return strings.Join(names, ", ")
}

func indexOf(ps []*agenda.Period, p *agenda.Period) int {
	for i, q := range ps {
		if q == p {
			return i
		}
	}
	return -1
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
