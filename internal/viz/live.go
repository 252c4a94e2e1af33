package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/particle"
	"github.com/san-kum/softsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 300
	frameInterval   = time.Second / 60

	forceStep    = 10.0
	colliderStep = 1.0
	resizeStep   = 5
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live drives a scene from the bubbletea event loop. Every tick feeds the
// real elapsed time to the scene; mouse and keys map onto scene commands.
type Live struct {
	scene  *sim.Scene
	log    *log.Logger
	canvas *Canvas
	theme  Theme
	styles Styles

	running   bool
	mesh      bool
	showHelp  bool
	last      time.Time
	lastSteps int
	status    string

	sag        *metrics.MaxSag
	sagHistory []float64
}

func NewLive(scene *sim.Scene, logger *log.Logger) *Live {
	if logger == nil {
		logger = logging.Discard()
	}
	theme := Themes[0]
	return &Live{
		scene:      scene,
		log:        logger,
		canvas:     NewCanvas(defaultCols, defaultRows),
		theme:      theme,
		styles:     NewStyles(theme),
		running:    true,
		sag:        metrics.NewMaxSag(),
		sagHistory: make([]float64, 0, historyCapacity),
	}
}

func (m *Live) Init() tea.Cmd { return tick() }

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.advance(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *Live) resize(w, h int) {
	cols := w - panelWidth - 2*canvasPadX - 2
	rows := h - 2*canvasPadY
	m.canvas = NewCanvas(max(cols, 10), max(rows, 5))
}

func (m *Live) advance(now time.Time) {
	if m.last.IsZero() {
		m.last = now
	}
	elapsed := now.Sub(m.last).Seconds()
	m.last = now
	if !m.running {
		return
	}

	m.lastSteps = m.scene.Update(elapsed)
	if err := m.scene.CheckFinite(); err != nil {
		m.running = false
		m.status = err.Error()
		m.log.Error("simulation unstable, pausing", "err", err)
		return
	}
	m.sag.Observe(m.scene.Primary(), m.scene.Time())
	if len(m.sagHistory) == historyCapacity {
		m.sagHistory = m.sagHistory[1:]
	}
	m.sagHistory = append(m.sagHistory, m.sag.Value())
}

func (m *Live) handleKey(key string) tea.Cmd {
	s := m.scene
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		m.running = !m.running
	case "tab":
		if err := s.SwitchMode(); err != nil {
			m.status = err.Error()
			break
		}
		m.resetSag()
	case "b":
		s.TogglePinGrabbed()
	case "c":
		s.BreakGrabbed()
	case "]":
		s.ChangeForce(forceStep)
	case "[":
		s.ChangeForce(-forceStep)
	case "left":
		s.MoveCircle(r2.Vec{X: -colliderStep})
	case "right":
		s.MoveCircle(r2.Vec{X: colliderStep})
	case "up":
		s.MoveCircle(r2.Vec{Y: colliderStep})
	case "down":
		s.MoveCircle(r2.Vec{Y: -colliderStep})
	case "w":
		s.MoveBox(r2.Vec{Y: colliderStep})
	case "a":
		s.MoveBox(r2.Vec{X: -colliderStep})
	case "s":
		s.MoveBox(r2.Vec{Y: -colliderStep})
	case "d":
		s.MoveBox(r2.Vec{X: colliderStep})
	case "r":
		m.regenerate(0)
	case "+", "=":
		m.regenerate(resizeStep)
	case "-", "_":
		m.regenerate(-resizeStep)
	case "1":
		s.ToggleStructureOnly()
	case "h":
		s.ToggleHealing()
	case "m":
		m.mesh = !m.mesh
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

// regenerate rebuilds the cloth, growing both grid sides by delta.
func (m *Live) regenerate(delta int) {
	if m.scene.Mode() != sim.ModeCloth {
		return
	}
	cols, rows := m.scene.Cloth().Dimensions()
	link := m.scene.Cloth().Config().Link
	if err := m.scene.RegenerateCloth(cols+delta, rows+delta, link); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.resetSag()
}

func (m *Live) resetSag() {
	m.sag.Reset()
	m.sagHistory = m.sagHistory[:0]
}

func (m *Live) handleMouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return
	}
	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		m.scene.Drag(m.mouseToWorld(msg.X, msg.Y))
	case tea.MouseActionRelease:
		m.scene.Release()
	}
}

func (m *Live) projector() Projector {
	world := m.scene.WorldSize()
	return NewProjector(r2.Box{Max: world}, m.canvas)
}

func (m *Live) mouseToWorld(x, y int) r2.Vec {
	return m.projector().ToWorld(x-canvasPadX, y-canvasPadY)
}

// Render redraws the canvas from the scene.
func (m *Live) Render() *Canvas {
	m.canvas.Clear()
	proj := m.projector()
	Draw(m.canvas, proj, m.scene.RenderData(), DrawOptions{Points: true, Triangles: m.mesh})
	if m.scene.Mode() == sim.ModeCloth {
		disc, box := m.scene.Colliders()
		DrawColliders(m.canvas, proj, disc, box)
	}
	return m.canvas
}

func (m *Live) View() string {
	st := m.styles
	canvasView := st.Canvas.Render(m.Render().String())

	var b strings.Builder
	b.WriteString(st.Header.Render(strings.ToUpper(m.scene.Mode().String())) + "\n")
	if m.running {
		b.WriteString(st.Running.Render("RUNNING") + "\n\n")
	} else {
		b.WriteString(st.Paused.Render("PAUSED") + "\n\n")
	}

	if len(m.sagHistory) > 1 {
		chart := asciigraph.Plot(m.sagHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Max sag"))
		b.WriteString(st.Graph.Render(chart) + "\n\n")
	}

	s := m.scene
	b.WriteString(st.Row("Time", fmt.Sprintf("%.2fs", s.Time())))
	b.WriteString(st.Row("Steps", fmt.Sprintf("%d (+%d)", s.Steps(), m.lastSteps)))
	b.WriteString(st.Row("Wind", fmt.Sprintf("%.0f", s.HorizontalForce())))
	b.WriteString(st.Row("Sag", fmt.Sprintf("%.2f", m.sag.Value())))
	if g := s.Grabbed(); g != particle.NoParticle {
		b.WriteString(st.Row("Holding", fmt.Sprintf("#%d", g)))
	}
	if s.Mode() == sim.ModeCloth {
		cols, rows := s.Cloth().Dimensions()
		b.WriteString(st.Row("Grid", fmt.Sprintf("%dx%d", cols, rows)))
		b.WriteString(st.Row("Healing", onOff(s.Cloth().Healing())))
		b.WriteString(st.Row("Torn", fmt.Sprintf("%d", len(s.Cloth().BrokenLinks()))))
	}
	if d := s.Accumulator().Dropped(); d > 0 {
		b.WriteString(st.Row("Dropped", fmt.Sprintf("%.2fs", d)))
	}
	if m.status != "" {
		b.WriteString("\n" + st.Alert.Render(m.status) + "\n")
	}

	b.WriteString("\n" + st.Separator(panelWidth-4) + "\n")
	b.WriteString(st.KeyHint.Render("SP:pause TAB:mode Q:quit ?:help"))
	if m.showHelp {
		b.WriteString("\n" + st.KeyHint.Render(helpText))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(b.String()))
}

const helpText = `mouse  drag a particle
b      pin/unpin held particle
c      tear held particle
[ ]    wind -/+
arrows move disc
wasd   move box
r + -  regenerate/resize cloth
1      plant skeleton only
h      cloth healing
m      mesh triangles
t      theme`

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Run starts the live view full-screen with mouse tracking.
func Run(scene *sim.Scene, logger *log.Logger) error {
	p := tea.NewProgram(NewLive(scene, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
