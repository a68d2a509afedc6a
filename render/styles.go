package render

import "github.com/charmbracelet/lipgloss"

// ANSI colors, so the output follows the terminal's palette.
var (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorMuted   = lipgloss.Color("8")
)

// Styles holds every style the console uses. They are bound to one renderer so
// color detection follows the console's writer rather than os.Stdout.
type Styles struct {
	Panel lipgloss.Style
	Path  lipgloss.Style

	Title   lipgloss.Style
	Header  lipgloss.Style
	Border  lipgloss.Style
	Columns []lipgloss.Style

	Heading      lipgloss.Style
	TreeHeading  lipgloss.Style
	TokenText    lipgloss.Style
	DepLabel     lipgloss.Style
	Enumerator   lipgloss.Style
	EntityText   lipgloss.Style
	EntityLabel  lipgloss.Style
	Placeholder  lipgloss.Style
	ModelHeading lipgloss.Style

	Success lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	Warn    lipgloss.Style
	Hint    lipgloss.Style
}

// NewStyles builds the console styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	cell := r.NewStyle().Padding(0, 1)

	return Styles{
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMagenta).
			Foreground(colorMagenta).
			Padding(0, 1),
		Path: r.NewStyle().Bold(true),

		Title:  r.NewStyle().Italic(true),
		Header: cell.Bold(true),
		Border: r.NewStyle().Foreground(colorMuted),
		// Token, Lemma, POS, Dep, Head, Shape, Alpha, Stop
		Columns: []lipgloss.Style{
			cell.Foreground(colorCyan),
			cell.Foreground(colorRed),
			cell.Foreground(colorGreen),
			cell.Foreground(colorYellow),
			cell.Foreground(colorMagenta),
			cell.Foreground(colorBlue),
			cell.Foreground(colorRed),
			cell.Foreground(colorGreen),
		},

		Heading:      r.NewStyle().Foreground(colorGreen),
		TreeHeading:  r.NewStyle().Foreground(colorCyan),
		TokenText:    r.NewStyle().Foreground(colorCyan),
		DepLabel:     r.NewStyle().Foreground(colorYellow),
		Enumerator:   r.NewStyle().Foreground(colorMuted).PaddingRight(1),
		EntityText:   r.NewStyle().Bold(true).Foreground(colorCyan),
		EntityLabel:  r.NewStyle().Foreground(colorYellow),
		Placeholder:  r.NewStyle().Faint(true),
		ModelHeading: r.NewStyle().Bold(true).Foreground(colorMagenta),

		Success: r.NewStyle().Bold(true).Foreground(colorGreen),
		Info:    r.NewStyle().Foreground(colorGreen),
		Error:   r.NewStyle().Foreground(colorRed),
		Warn:    r.NewStyle().Foreground(colorYellow),
		Hint:    r.NewStyle().Foreground(colorYellow),
	}
}

// column returns the cell style of column col, falling back to plain padding.
func (s Styles) column(col int) lipgloss.Style {
	if col >= 0 && col < len(s.Columns) {
		return s.Columns[col]
	}
	return s.Header.UnsetBold()
}
