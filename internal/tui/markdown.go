package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	h1Regex        = regexp.MustCompile(`<h1 id="[^"]*">(.*?)</h1>`)
	h2Regex        = regexp.MustCompile(`<h2 id="[^"]*">(.*?)</h2>`)
	h3Regex        = regexp.MustCompile(`<h3 id="[^"]*">(.*?)</h3>`)
	strongRegex    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRegex        = regexp.MustCompile(`<em>(.*?)</em>`)
	linkRegex      = regexp.MustCompile(`<a href="([^"]*)">(.*?)</a>`)
	blockquoteRe   = regexp.MustCompile(`(?s)<blockquote>(.*?)</blockquote>`)
	ulRegex        = regexp.MustCompile(`(?s)<ul>(.*?)</ul>`)
	olRegex        = regexp.MustCompile(`(?s)<ol>(.*?)</ol>`)
	liRegex        = regexp.MustCompile(`<li>(.*?)</li>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
	inlineCodeRe   = regexp.MustCompile(`<code>([^<]+)</code>`)
)

// downloadExt maps fence languages to the file extension used when a code
// block is saved to disk. Unknown languages fall back to txt.
var downloadExt = map[string]string{
	"javascript": "js",
	"python":     "py",
	"html":       "html",
	"css":        "css",
	"typescript": "ts",
	"json":       "json",
	"markdown":   "md",
	"text":       "txt",
}

// DownloadExt returns the saved-file extension for a fence language.
func DownloadExt(lang string) string {
	if ext, ok := downloadExt[strings.ToLower(lang)]; ok {
		return ext
	}
	return "txt"
}

// CodeBlock is a fenced block extracted during rendering, kept around so
// the UI can offer copy and save actions on it.
type CodeBlock struct {
	Lang string
	Code string
}

// MarkdownRenderer converts markdown to styled terminal text with syntax
// highlighted code blocks.
type MarkdownRenderer struct {
	goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style
	theme     Theme
}

func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
	)

	r := &MarkdownRenderer{
		Markdown:  md,
		formatter: formatters.Get("terminal256"),
	}
	r.SetTheme(theme)
	return r
}

// SetTheme swaps the palette, including the chroma style used for code.
func (r *MarkdownRenderer) SetTheme(theme Theme) {
	r.theme = theme
	if theme.Dark {
		r.style = styles.Get("dracula")
	} else {
		r.style = styles.Get("github")
	}
}

// Render converts markdown to terminal output. On converter failure the
// raw content comes back unchanged so the turn still displays. The second
// return value lists the fenced code blocks found, in document order.
func (r *MarkdownRenderer) Render(content string, width int) (string, []CodeBlock) {
	var buf bytes.Buffer
	if err := r.Convert([]byte(content), &buf); err != nil {
		return content, nil
	}
	return r.formatForTerminal(buf.String(), width)
}

func (r *MarkdownRenderer) formatForTerminal(htmlContent string, width int) (string, []CodeBlock) {
	result := htmlContent
	t := r.theme

	var blocks []CodeBlock
	var styledBlocks []string
	result = codeBlockRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := codeBlockRegex.FindStringSubmatch(m)
		if len(matches) < 3 {
			return m
		}

		lang := matches[1]
		code := decodeHTMLEntities(matches[2])
		blocks = append(blocks, CodeBlock{Lang: lang, Code: code})

		highlighted := r.highlight(code, lang)

		codeWidth := width - 8
		if codeWidth < 20 {
			codeWidth = 20
		}
		styled := lipgloss.NewStyle().
			Foreground(t.CodeText).
			Background(t.CodeBg).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.CodeBorder).
			Width(codeWidth).
			Render(highlighted)

		index := len(styledBlocks)
		styledBlocks = append(styledBlocks, styled)
		return fmt.Sprintf("\n{{CODE_BLOCK_%d}}\n", index)
	})

	result = inlineCodeRe.ReplaceAllStringFunc(result, func(m string) string {
		matches := inlineCodeRe.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		return lipgloss.NewStyle().
			Foreground(t.CodeText).
			Background(t.InlineBg).
			Padding(0, 1).
			Render(decodeHTMLEntities(matches[1]))
	})

	heading := func(re *regexp.Regexp, style lipgloss.Style) {
		result = re.ReplaceAllStringFunc(result, func(m string) string {
			matches := re.FindStringSubmatch(m)
			if len(matches) < 2 {
				return m
			}
			return style.Width(width-4).Render(matches[1]) + "\n"
		})
	}
	heading(h1Regex, lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Border))
	heading(h2Regex, lipgloss.NewStyle().Bold(true).Foreground(t.Accent))
	heading(h3Regex, lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary))

	result = strongRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := strongRegex.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		return lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary).Render(matches[1])
	})

	result = emRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := emRegex.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		return lipgloss.NewStyle().Italic(true).Foreground(t.TextMuted).Render(matches[1])
	})

	// Citation markers come through as ordinary links; the label and the
	// target render side by side since a terminal has no hover state.
	result = linkRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := linkRegex.FindStringSubmatch(m)
		if len(matches) < 3 {
			return m
		}
		return lipgloss.NewStyle().
			Foreground(t.Accent).
			Underline(true).
			Render(fmt.Sprintf("%s (%s)", matches[2], matches[1]))
	})

	result = blockquoteRe.ReplaceAllStringFunc(result, func(m string) string {
		matches := blockquoteRe.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		content := htmlTagRegex.ReplaceAllString(strings.TrimSpace(matches[1]), "")
		return lipgloss.NewStyle().
			Foreground(t.TextMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(t.Accent).
			PaddingLeft(2).
			Width(width-4).
			Render(content) + "\n"
	})

	result = ulRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := ulRegex.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		items := liRegex.FindAllStringSubmatch(matches[1], -1)
		var list strings.Builder
		for _, item := range items {
			if len(item) >= 2 {
				list.WriteString(lipgloss.NewStyle().Foreground(t.Success).Render("  • "))
				list.WriteString(htmlTagRegex.ReplaceAllString(item[1], ""))
				list.WriteString("\n")
			}
		}
		return list.String()
	})

	result = olRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := olRegex.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		items := liRegex.FindAllStringSubmatch(matches[1], -1)
		var list strings.Builder
		for i, item := range items {
			if len(item) >= 2 {
				list.WriteString(lipgloss.NewStyle().
					Bold(true).
					Foreground(t.Accent).
					Render(fmt.Sprintf("  %d. ", i+1)))
				list.WriteString(htmlTagRegex.ReplaceAllString(item[1], ""))
				list.WriteString("\n")
			}
		}
		return list.String()
	})

	result = strings.ReplaceAll(result, "<p>", "")
	result = strings.ReplaceAll(result, "</p>", "\n")
	result = strings.ReplaceAll(result, "<br>", "\n")
	result = strings.ReplaceAll(result, "<br/>", "\n")
	result = strings.ReplaceAll(result, "<br />", "\n")

	for i, block := range styledBlocks {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{CODE_BLOCK_%d}}", i), block)
	}

	result = htmlTagRegex.ReplaceAllString(result, "")
	result = decodeHTMLEntities(result)
	result = multiNewline.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result), blocks
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// decodeHTMLEntities reverses the entity escaping the HTML stage applies,
// so model text like &lt;tag&gt; displays as typed.
func decodeHTMLEntities(s string) string {
	replacements := []struct {
		old string
		new string
	}{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", "\""},
		{"&#39;", "'"},
		{"&nbsp;", " "},
		{"&hellip;", "..."},
		{"&#x27;", "'"},
		{"&#x60;", "`"},
	}
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}
