package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/G4NGGAA/Elaina-Ai/internal/app"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

type layout struct {
	ChatW    int
	ChatH    int
	SidebarW int
	InputW   int
}

func (m *MainModel) computeLayout() layout {
	l := layout{}
	l.SidebarW = 0
	if m.showSidebar && m.width >= 80 {
		l.SidebarW = sidebarWidth
	}
	// Top bar, input box (3 with border) and footer.
	l.ChatH = max(3, m.height-7)
	l.ChatW = max(20, m.width-l.SidebarW-4)
	l.InputW = max(10, m.width-6)
	return l
}

func (m *MainModel) View() string {
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return m.help.View(m.theme)
	}

	l := m.computeLayout()
	top := m.renderTopBar()
	main := m.renderMain(l)
	input := m.renderInputArea(l)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, input, footer)
}

func (m *MainModel) renderTopBar() string {
	t := m.theme
	title := t.TopBarTitle.Render("✦ Elaina")

	sessTitle := m.controller.Title()
	if sessTitle == "" {
		sessTitle = "Percakapan baru"
	}

	s := m.controller.Settings()
	meta := s.Model
	if s.Grounding {
		meta += " · grounding"
	}

	left := title + "  " + t.TopBar.Render(sessTitle)
	right := t.TopBarMeta.Render(meta)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

func (m *MainModel) renderMain(l layout) string {
	chatStyle := m.theme.Pane
	if m.focus == focusChat {
		chatStyle = m.theme.PaneFocused
	}
	chat := chatStyle.Width(l.ChatW).Height(l.ChatH).Render(m.chatVP.View())

	if l.SidebarW == 0 {
		return chat
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(l), chat)
}

func (m *MainModel) renderSidebar(l layout) string {
	t := m.theme
	style := t.Pane
	if m.focus == focusSidebar {
		style = t.PaneFocused
	}

	var b strings.Builder
	b.WriteString(t.PaneTitle.Render("Riwayat"))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		b.WriteString(t.RoleSys.Render("belum ada percakapan"))
	}
	activeID := m.controller.ActiveID()
	for i, sess := range m.sessions {
		if i >= l.ChatH-2 {
			break
		}
		title := sess.Title
		if title == "" {
			title = sess.ID
		}
		title = truncateTitle(title, sidebarWidth-6)
		line := title
		if sess.ID == activeID {
			line = "· " + line
		} else {
			line = "  " + line
		}
		if m.focus == focusSidebar && i == m.sessionSel {
			b.WriteString(t.SidebarSel.Render("> " + line))
		} else {
			b.WriteString(t.SidebarItem.Render("  " + line))
		}
		b.WriteString("\n")
	}

	return style.Width(sidebarWidth - 2).Height(l.ChatH).Render(b.String())
}

func (m *MainModel) renderInputArea(l layout) string {
	t := m.theme
	style := t.InputBox
	if m.focus == focusInput {
		style = t.InputBoxF
	}

	var b strings.Builder
	if pending := m.controller.Attachments().List(); len(pending) > 0 {
		chips := make([]string, 0, len(pending))
		for _, f := range pending {
			name := f.Name
			if name == "" {
				name = f.MimeType
			}
			chips = append(chips, t.FileChip.Render(name))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return style.Width(l.InputW).Render(b.String())
}

func (m *MainModel) renderFooter() string {
	t := m.theme
	status := m.statusText
	if m.running {
		status = t.Spinner.Render(spinnerFrames[m.spinnerPos]) + " " + status
	}
	keys := t.Footer.Render("enter kirim · esc batal · ctrl+n baru · ctrl+b riwayat · ctrl+h bantuan")
	return " " + status + "   " + keys
}

// rebuildChat re-renders the whole history into the viewport. The last
// model turn's code blocks feed the copy and save shortcuts.
func (m *MainModel) rebuildChat() {
	if !m.ready {
		return
	}
	l := m.computeLayout()
	history := m.controller.History()

	if len(history) == 0 {
		m.chatVP.SetContent(m.renderWelcome())
		return
	}

	t := m.theme
	var b strings.Builder
	m.lastBlocks = nil
	for _, msg := range history {
		var header string
		switch {
		case msg.Role == app.RoleUser:
			header = t.RoleYou.Render("Kamu")
		case isErrorTurn(msg):
			header = t.RoleErr.Render("Elaina")
		default:
			header = t.RoleAI.Render("Elaina")
		}
		b.WriteString(header)
		b.WriteString("\n")

		body, blocks := m.renderer.Render(msg, m.metaByID[msg.ID], l.ChatW)
		if msg.Role == app.RoleModel && len(blocks) > 0 {
			m.lastBlocks = blocks
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(b.String())
}

func (m *MainModel) renderWelcome() string {
	t := m.theme
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(t.TopBarTitle.Render("  ✦ Halo! Aku Elaina."))
	b.WriteString("\n")
	b.WriteString(t.RoleSys.Render("  Penyihir pengembara siap membantu. Tanyakan apa saja."))
	b.WriteString("\n\n")

	for i, s := range suggestions {
		chip := t.SuggestionChip.Render(fmt.Sprintf("%d. %s", i+1, s))
		b.WriteString("  " + chip + "\n")
	}
	b.WriteString("\n")
	b.WriteString(t.RoleSys.Render("  Tekan angka untuk memakai saran, atau langsung mengetik."))
	return b.String()
}

// truncateTitle shortens a title to n runes plus an ellipsis. Byte slicing
// would cut multibyte runes mid-sequence; titles here are usually
// Indonesian and may carry non-ASCII.
func truncateTitle(s string, n int) string {
	if n <= 0 {
		return "…"
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

func isErrorTurn(msg app.Message) bool {
	for _, p := range msg.Parts {
		if p.File == nil && strings.HasPrefix(p.Text, "Aww, maaf, Elaina error nih:") {
			return true
		}
	}
	return false
}
