// Package tui is the interactive terminal tuner: a block list with live
// parameter adjustment, undo/redo, and Bode curves redrawn on every edit.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/quintel/comptune/internal/storage"
	"github.com/quintel/comptune/internal/tuner"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type state int

const (
	stateTune state = iota
	stateAdd
	statePrompt
)

type promptKind int

const (
	promptSave promptKind = iota
	promptLoad
	promptLoadRef
	promptMeasured
	promptNote
)

var promptLabels = map[promptKind]string{
	promptSave:     "save preset as",
	promptLoad:     "load preset",
	promptLoadRef:  "load reference preset",
	promptMeasured: "load measured CSV",
	promptNote:     "snapshot note",
}

type view int

const (
	viewMag view = iota
	viewPhase
)

type model struct {
	session *tuner.Session
	store   *storage.Store

	state       state
	cursor      int
	paramCursor int
	fine        bool

	addCursor int

	prompt  promptKind
	editBuf string

	curve     view
	showPhase bool
	message   string
	msgErr    bool

	width  int
	height int
}

func newModel(s *tuner.Session, st *storage.Store) *model {
	return &model{
		session: s,
		store:   st,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateTune:
		return m.tuneKey(msg)
	case stateAdd:
		return m.addKey(msg)
	case statePrompt:
		return m.promptKey(msg)
	}
	return m, nil
}

func (m model) tuneKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.message = ""
	nblocks := len(m.session.Model.Blocks)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.paramCursor = 0
		}
	case "down", "j":
		if m.cursor < nblocks-1 {
			m.cursor++
			m.paramCursor = 0
		}
	case "tab":
		if m.cursor < nblocks {
			if d, ok := m.session.Registry.Lookup(m.session.Model.Blocks[m.cursor].Type); ok && len(d.ParamOrder) > 0 {
				m.paramCursor = (m.paramCursor + 1) % len(d.ParamOrder)
			}
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(+1)
	case "f":
		m.fine = !m.fine
	case "e", " ":
		if m.cursor < nblocks {
			m.session.SetEnabled(m.cursor, !m.session.Model.Blocks[m.cursor].Enabled)
		}
	case "a":
		m.state = stateAdd
		m.addCursor = 0
	case "d", "backspace":
		if m.cursor < nblocks {
			m.session.RemoveBlock(m.cursor)
			if m.cursor >= len(m.session.Model.Blocks) && m.cursor > 0 {
				m.cursor--
			}
			m.paramCursor = 0
		}
	case "K", "shift+up":
		if m.cursor > 0 {
			m.session.MoveBlock(m.cursor, m.cursor-1)
			m.cursor--
		}
	case "J", "shift+down":
		if m.cursor < nblocks-1 {
			m.session.MoveBlock(m.cursor, m.cursor+1)
			m.cursor++
		}
	case "u", "ctrl+z":
		if !m.session.Undo() {
			m.setErr("nothing to undo")
		}
		m.clampCursor()
	case "ctrl+y", "U":
		if !m.session.Redo() {
			m.setErr("nothing to redo")
		}
		m.clampCursor()
	case "r":
		m.session.CopyToReference()
		m.setMsg("reference updated")
	case "p":
		m.showPhase = !m.showPhase
		if m.showPhase {
			m.curve = viewPhase
		} else {
			m.curve = viewMag
		}
	case "s":
		return m.openPrompt(promptSave, "tuned.json")
	case "o":
		return m.openPrompt(promptLoad, "")
	case "O":
		return m.openPrompt(promptLoadRef, "")
	case "m":
		return m.openPrompt(promptMeasured, "")
	case "n":
		return m.openPrompt(promptNote, "")
	}
	return m, nil
}

func (m model) openPrompt(kind promptKind, initial string) (model, tea.Cmd) {
	m.state = statePrompt
	m.prompt = kind
	m.editBuf = initial
	return m, nil
}

func (m model) addKey(msg tea.KeyMsg) (model, tea.Cmd) {
	names := m.session.Registry.Names()
	switch msg.String() {
	case "q", "escape":
		m.state = stateTune
	case "up", "k":
		if m.addCursor > 0 {
			m.addCursor--
		}
	case "down", "j":
		if m.addCursor < len(names)-1 {
			m.addCursor++
		}
	case "enter", " ":
		if err := m.session.AddBlock(names[m.addCursor]); err != nil {
			m.setErr(err.Error())
		} else {
			m.cursor = len(m.session.Model.Blocks) - 1
			m.paramCursor = 0
		}
		m.state = stateTune
	}
	return m, nil
}

func (m model) promptKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "escape":
		m.state = stateTune
		m.editBuf = ""
	case "enter":
		m.state = stateTune
		m.runPrompt(strings.TrimSpace(m.editBuf))
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if len(msg.Runes) > 0 {
			m.editBuf += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *model) runPrompt(text string) {
	switch m.prompt {
	case promptSave:
		if text == "" {
			return
		}
		if err := m.store.SavePreset(text, m.session.Model.Preset()); err != nil {
			m.setErr(err.Error())
			return
		}
		m.setMsg("saved " + text)
	case promptLoad, promptLoadRef:
		if text == "" {
			return
		}
		p, err := m.store.LoadPreset(text)
		if err != nil {
			m.setErr(err.Error())
			return
		}
		if m.prompt == promptLoadRef {
			err = m.session.ApplyRefPreset(p)
		} else {
			err = m.session.ApplyPreset(p)
		}
		if err != nil {
			m.setErr(err.Error())
			return
		}
		m.clampCursor()
		m.setMsg("loaded " + text)
	case promptMeasured:
		if text == "" {
			return
		}
		if err := m.session.LoadMeasured(text); err != nil {
			m.setErr(err.Error())
			return
		}
		m.setMsg("measured data loaded")
	case promptNote:
		snap := m.session.Snapshot(text, time.Now())
		err := m.store.AppendSnapshot(storage.SnapshotEntry{
			Timestamp: snap.Timestamp,
			Phase1Hz:  snap.Phase1Hz,
			Phase3Hz:  snap.Phase3Hz,
			Blocks:    snap.Blocks,
			Note:      snap.Note,
		})
		if err != nil {
			m.setErr(err.Error())
			return
		}
		m.setMsg("snapshot logged")
	}
}

func (m *model) setMsg(s string) { m.message, m.msgErr = s, false }
func (m *model) setErr(s string) { m.message, m.msgErr = s, true }

func (m *model) clampCursor() {
	if n := len(m.session.Model.Blocks); m.cursor >= n {
		m.cursor = n - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.paramCursor = 0
	}
}

// adjust nudges the selected parameter along its slider scale: one percent
// of the range per press, a tenth of that in fine mode.
func (m *model) adjust(dir int) {
	if m.cursor >= len(m.session.Model.Blocks) {
		return
	}
	b := m.session.Model.Blocks[m.cursor]
	d, ok := m.session.Registry.Lookup(b.Type)
	if !ok || len(d.ParamOrder) == 0 {
		return
	}
	if m.paramCursor >= len(d.ParamOrder) {
		m.paramCursor = 0
	}
	name := d.ParamOrder[m.paramCursor]
	meta := d.Params[name]

	step := 0.01
	if m.fine {
		step = 0.001
	}
	ratio := meta.Ratio(b.Params[name]) + float64(dir)*step
	m.session.SetParam(m.cursor, name, meta.FromRatio(ratio))
}

func (m model) View() string {
	switch m.state {
	case stateAdd:
		return m.viewAdd()
	default:
		return m.viewTune()
	}
}

func (m model) viewAdd() string {
	var b strings.Builder
	b.WriteString("\n      " + cyan.Render("add block") + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")
	for i, name := range m.session.Registry.Names() {
		d, _ := m.session.Registry.Lookup(name)
		if i == m.addCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + dim.Render(d.Formula) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dimmer.Render(d.Formula) + "\n")
		}
	}
	b.WriteString("\n" + dim.Render("      ↑↓ select   enter add   esc back") + "\n")
	return b.String()
}

func (m model) viewTune() string {
	var b strings.Builder

	b.WriteString("\n   " + cyan.Render("comptune") + "  " +
		dim.Render(fmt.Sprintf("%g..%g Hz", m.session.Settings.FreqMin, m.session.Settings.FreqMax)))
	if m.session.HasMeasured() {
		b.WriteString("  " + green.Render("measured ●"))
	}
	b.WriteString("\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", max(40, m.width-6))) + "\n\n")

	m.writeBlocks(&b)
	b.WriteString("\n")
	m.writePlot(&b)
	b.WriteString("\n")
	m.writeReport(&b)

	if m.state == statePrompt {
		b.WriteString("\n   " + yellow.Render(promptLabels[m.prompt]+": ") + white.Render(m.editBuf+"▋") + "\n")
	} else if m.message != "" {
		style := green
		if m.msgErr {
			style = red
		}
		b.WriteString("\n   " + style.Render(m.message) + "\n")
	}

	undo := dimmer
	if m.session.CanUndo() {
		undo = dim
	}
	redo := dimmer
	if m.session.CanRedo() {
		redo = dim
	}
	fine := ""
	if m.fine {
		fine = yellow.Render("  fine")
	}
	b.WriteString("\n   " + dim.Render("↑↓ block  tab param  ←→ adjust  e toggle  a add  d del  JK move") + fine + "\n")
	b.WriteString("   " + undo.Render("u undo") + "  " + redo.Render("U redo") + dim.Render("  r ref  p phase  s/o save/load  m measured  n note  q quit") + "\n")

	return b.String()
}

func (m model) writeBlocks(b *strings.Builder) {
	if len(m.session.Model.Blocks) == 0 {
		b.WriteString("   " + dim.Render("no blocks — press a to add one") + "\n")
		return
	}
	for i, blk := range m.session.Model.Blocks {
		d, ok := m.session.Registry.Lookup(blk.Type)

		mark := dim.Render("  ")
		name := dim.Render(fmt.Sprintf("%-14s", blk.Type))
		if i == m.cursor {
			mark = cyan.Render("▸ ")
			name = white.Render(fmt.Sprintf("%-14s", blk.Type))
		}
		enabled := green.Render("●")
		if !blk.Enabled {
			enabled = dimmer.Render("○")
			name = dimmer.Render(fmt.Sprintf("%-14s", blk.Type))
		}

		var params strings.Builder
		if ok {
			for j, pn := range d.ParamOrder {
				val := fmt.Sprintf("%.4g", blk.Params[pn])
				if i == m.cursor && j == m.paramCursor {
					params.WriteString(magenta.Render(pn+"="+val) + " ")
				} else {
					params.WriteString(dim.Render(pn+"="+val) + " ")
				}
			}
		}
		b.WriteString(fmt.Sprintf("   %s%s %s %s\n", mark, enabled, name, params.String()))
	}
}

func (m model) writePlot(b *strings.Builder) {
	adj := m.session.ModelCurves()
	series := adj.MagDB
	caption := "magnitude (dB)"
	if m.curve == viewPhase {
		series = adj.PhaseDeg
		caption = "phase (deg)"
	}
	if len(series) == 0 {
		return
	}

	width := m.width - 14
	if width < 40 {
		width = 40
	}
	height := m.height - len(m.session.Model.Blocks) - 16
	if height < 6 {
		height = 6
	}
	if height > 14 {
		height = 14
	}
	plot := asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	for _, line := range strings.Split(plot, "\n") {
		b.WriteString("   " + line + "\n")
	}
}

func (m model) writeReport(b *strings.Builder) {
	rows := m.session.Report()
	if len(rows) == 0 {
		return
	}
	b.WriteString("   " + dim.Render(fmt.Sprintf("%8s %10s %10s %9s %10s %10s %9s",
		"Hz", "mag ref", "mag", "Δmag", "ph ref", "ph", "Δph")) + "\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("   %s %s %s %s %s %s %s\n",
			white.Render(fmt.Sprintf("%8.3g", r.Freq)),
			dim.Render(fmt.Sprintf("%10.2f", r.MagRef)),
			white.Render(fmt.Sprintf("%10.2f", r.MagAdj)),
			diffStyle(r.MagDiff).Render(fmt.Sprintf("%+9.2f", r.MagDiff)),
			dim.Render(fmt.Sprintf("%10.2f", r.PhaseRef)),
			white.Render(fmt.Sprintf("%10.2f", r.PhaseAdj)),
			diffStyle(r.PhaseDiff).Render(fmt.Sprintf("%+9.2f", r.PhaseDiff))))
	}
}

func diffStyle(d float64) lipgloss.Style {
	if d > 0 {
		return green
	}
	if d < 0 {
		return yellow
	}
	return dim
}

// Run starts the interactive tuner in the alternate screen.
func Run(s *tuner.Session, st *storage.Store) error {
	if err := st.Init(); err != nil {
		return err
	}
	p := tea.NewProgram(newModel(s, st), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
