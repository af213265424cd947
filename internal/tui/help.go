package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{
		keys:  defaultKeyMap(),
		width: 80,
	}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(t Theme) string {
	var b strings.Builder

	keyStyle := t.TopBarTitle
	descStyle := t.RoleSys

	b.WriteString(t.TopBarTitle.Render("elaina help"))
	b.WriteString("\n\n")

	b.WriteString(t.PaneTitle.Render("chat"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  send message\n", keyStyle.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  cancel pending reply\n", keyStyle.Render("esc")))
	b.WriteString(fmt.Sprintf("  %s  new chat\n", keyStyle.Render("ctrl+n")))
	b.WriteString(fmt.Sprintf("  %s  toggle history sidebar\n", keyStyle.Render("ctrl+b")))
	b.WriteString(fmt.Sprintf("  %s  switch focus\n", keyStyle.Render("tab")))
	b.WriteString(fmt.Sprintf("  %s  quit\n", keyStyle.Render("ctrl+c")))

	b.WriteString("\n")
	b.WriteString(t.PaneTitle.Render("settings"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  toggle web grounding\n", keyStyle.Render("ctrl+g")))
	b.WriteString(fmt.Sprintf("  %s  toggle dark theme\n", keyStyle.Render("ctrl+t")))

	b.WriteString("\n")
	b.WriteString(t.PaneTitle.Render("code blocks"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  copy last code block\n", keyStyle.Render("ctrl+y")))
	b.WriteString(fmt.Sprintf("  %s  save last code block to file\n", keyStyle.Render("ctrl+o")))

	b.WriteString("\n")
	b.WriteString(t.PaneTitle.Render("commands"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  /attach <path>   attach a file (up to 5)"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  /model <name>    switch model"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  /system <text>   set system instruction"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  /help            toggle this screen"))
	b.WriteString("\n")

	return b.String()
}

type keyMap struct {
	Quit          key.Binding
	Enter         key.Binding
	Cancel        key.Binding
	NewChat       key.Binding
	ToggleSidebar key.Binding
	FocusNext     key.Binding
	Grounding     key.Binding
	DarkTheme     key.Binding
	CopyCode      key.Binding
	SaveCode      key.Binding
	Help          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel reply"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "history"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		Grounding: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "grounding"),
		),
		DarkTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		CopyCode: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy code"),
		),
		SaveCode: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "save code"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Cancel, k.NewChat, k.ToggleSidebar, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Cancel, k.NewChat, k.ToggleSidebar},
		{k.Grounding, k.DarkTheme, k.CopyCode, k.SaveCode, k.Quit},
	}
}
