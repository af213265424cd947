package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles every style the views need. Light and dark variants track
// the persisted darkTheme setting; toggling the setting swaps the whole
// bundle at once.
type Theme struct {
	Dark bool

	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color
	TextFaint   lipgloss.Color

	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleSys lipgloss.Style
	RoleErr lipgloss.Style

	FileChip       lipgloss.Style
	SuggestionChip lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarSel     lipgloss.Style

	CodeText   lipgloss.Color
	CodeBg     lipgloss.Color
	CodeBorder lipgloss.Color
	InlineBg   lipgloss.Color
}

// NewTheme builds the style bundle for the given mode. ELAINA_NO_COLOR=1
// strips the palette for terminals that want plain output.
func NewTheme(dark bool) Theme {
	if os.Getenv("ELAINA_NO_COLOR") == "1" {
		return newNoColorTheme(dark)
	}
	if dark {
		return newDarkTheme()
	}
	return newLightTheme()
}

func newDarkTheme() Theme {
	t := Theme{
		Dark:        true,
		TextPrimary: lipgloss.Color("#f2f2f2"),
		TextMuted:   lipgloss.Color("#c7c7c7"),
		TextFaint:   lipgloss.Color("#9aa0a6"),

		Accent:  lipgloss.Color("#b39ddb"),
		Success: lipgloss.Color("#46d1b7"),
		Error:   lipgloss.Color("#ff7a7a"),
		Border:  lipgloss.Color("#3a3a3a"),

		CodeText:   lipgloss.Color("#f8f8f2"),
		CodeBg:     lipgloss.Color("#282a36"),
		CodeBorder: lipgloss.Color("#6272a4"),
		InlineBg:   lipgloss.Color("#44475a"),
	}
	return t.fill()
}

func newLightTheme() Theme {
	t := Theme{
		Dark:        false,
		TextPrimary: lipgloss.Color("#1d2433"),
		TextMuted:   lipgloss.Color("#4a5568"),
		TextFaint:   lipgloss.Color("#718096"),

		Accent:  lipgloss.Color("#5e35b1"),
		Success: lipgloss.Color("#0f766e"),
		Error:   lipgloss.Color("#b42318"),
		Border:  lipgloss.Color("#cbd5e0"),

		CodeText:   lipgloss.Color("#1d2433"),
		CodeBg:     lipgloss.Color("#f1f3f5"),
		CodeBorder: lipgloss.Color("#cbd5e0"),
		InlineBg:   lipgloss.Color("#e2e8f0"),
	}
	return t.fill()
}

func newNoColorTheme(dark bool) Theme {
	t := Theme{
		Dark:        dark,
		TextPrimary: lipgloss.Color(""),
		TextMuted:   lipgloss.Color(""),
		TextFaint:   lipgloss.Color(""),
		Accent:      lipgloss.Color(""),
		Success:     lipgloss.Color(""),
		Error:       lipgloss.Color(""),
		Border:      lipgloss.Color(""),
	}
	return t.fill()
}

func (t Theme) fill() Theme {
	t.TopBar = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextMuted)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.RoleSys = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(t.Error)

	t.FileChip = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.SuggestionChip = lipgloss.NewStyle().
		Foreground(t.Accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.SidebarSel = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	return t
}
