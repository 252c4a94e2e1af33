package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles of the live view, derived from a Theme.
type Styles struct {
	Canvas  lipgloss.Style
	Panel   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Alert   lipgloss.Style
	Graph   lipgloss.Style
	KeyHint lipgloss.Style
}

const (
	canvasPadX = 2
	canvasPadY = 1
	panelWidth = 42
)

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().
			Padding(canvasPadY, canvasPadX).
			Foreground(t.Mesh),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(panelWidth),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Header).
			MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		Alert:   lipgloss.NewStyle().Foreground(t.Highlight),
		Graph:   lipgloss.NewStyle().Foreground(t.Header).Padding(1, 0),
		KeyHint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}

// Row renders a label/value pair on one line.
func (s Styles) Row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value) + "\n"
}

// Separator draws a muted rule with a centre mark.
func (s Styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.KeyHint.UnsetItalic().Render(left + " ◆ " + right)
}
