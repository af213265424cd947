package tui

import (
	"fmt"
	"strings"

	"github.com/G4NGGAA/Elaina-Ai/internal/app"
)

// MessageRenderer turns a chat message into terminal text. Text parts go
// through the markdown pipeline; file parts render as chips in the order
// they appear in the message.
type MessageRenderer struct {
	markdown *MarkdownRenderer
	theme    Theme
}

func NewMessageRenderer(theme Theme) *MessageRenderer {
	return &MessageRenderer{
		markdown: NewMarkdownRenderer(theme),
		theme:    theme,
	}
}

func (r *MessageRenderer) SetTheme(theme Theme) {
	r.theme = theme
	r.markdown.SetTheme(theme)
}

// Render renders a full message. For model turns carrying grounding
// metadata the citation markers are injected into the text before the
// markdown pass, so they come out as styled links. User turns skip the
// markdown pipeline and display as typed. Returns the rendered text and
// any fenced code blocks found in model text.
func (r *MessageRenderer) Render(msg app.Message, meta *app.GroundingMetadata, width int) (string, []CodeBlock) {
	var out strings.Builder
	var blocks []CodeBlock

	for i, part := range msg.Parts {
		if i > 0 {
			out.WriteString("\n")
		}
		if part.File != nil {
			out.WriteString(r.renderFileChip(*part.File))
			continue
		}
		text := part.Text
		if msg.Role == app.RoleModel {
			text = app.InjectCitations(text, meta)
			rendered, b := r.markdown.Render(text, width)
			out.WriteString(rendered)
			blocks = append(blocks, b...)
		} else {
			out.WriteString(strings.TrimSpace(text))
		}
	}
	return out.String(), blocks
}

func (r *MessageRenderer) renderFileChip(f app.FilePart) string {
	name := f.Name
	if name == "" {
		name = "attachment"
	}
	label := fmt.Sprintf("📄 %s", name)
	if strings.HasPrefix(f.MimeType, "image/") {
		label = fmt.Sprintf("🖼 %s", name)
	}
	return r.theme.FileChip.Render(label)
}
