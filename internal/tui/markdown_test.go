package tui

import (
	"strings"
	"testing"
)

func TestDownloadExt(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"javascript", "js"},
		{"python", "py"},
		{"html", "html"},
		{"css", "css"},
		{"typescript", "ts"},
		{"json", "json"},
		{"markdown", "md"},
		{"text", "txt"},
		{"Python", "py"},
		{"rust", "txt"},
		{"", "txt"},
	}
	for _, tt := range tests {
		if got := DownloadExt(tt.lang); got != tt.want {
			t.Errorf("DownloadExt(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestRenderExtractsCodeBlocks(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme(true))
	content := "Sebelum kode.\n\n```python\nprint('hi')\n```\n\nSesudah kode."

	out, blocks := r.Render(content, 80)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(blocks))
	}
	if blocks[0].Lang != "python" {
		t.Fatalf("wrong language %q", blocks[0].Lang)
	}
	// Entities must be decoded back to source form for copy and save.
	if !strings.Contains(blocks[0].Code, "print('hi')") {
		t.Fatalf("code lost its quotes: %q", blocks[0].Code)
	}
	if !strings.Contains(out, "Sebelum kode.") || !strings.Contains(out, "Sesudah kode.") {
		t.Fatalf("surrounding prose lost: %q", out)
	}
	if strings.Contains(out, "CODE_BLOCK") {
		t.Fatal("placeholder leaked into output")
	}
}

func TestRenderStripsHTML(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme(false))
	out, _ := r.Render("# Judul\n\nTeks **tebal** dan *miring*.", 80)

	for _, frag := range []string{"<h1", "<p>", "<strong>", "<em>"} {
		if strings.Contains(out, frag) {
			t.Fatalf("HTML %q leaked into terminal output: %q", frag, out)
		}
	}
	for _, word := range []string{"Judul", "tebal", "miring"} {
		if !strings.Contains(out, word) {
			t.Fatalf("text %q lost: %q", word, out)
		}
	}
}

func TestRenderCitationLinks(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme(true))
	out, _ := r.Render("Fakta penting. [1](https://sumber)", 80)

	// Terminals have no hover state, so the target renders next to the
	// marker.
	if !strings.Contains(out, "(https://sumber)") {
		t.Fatalf("citation target not visible: %q", out)
	}
}

func TestRenderEntitiesDecoded(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme(true))
	out, _ := r.Render("Bandingkan a \\< b dan x \\> y, lalu \"kutip\".", 80)
	for _, frag := range []string{"&lt;", "&gt;", "&quot;", "&#39;"} {
		if strings.Contains(out, frag) {
			t.Fatalf("entity %q left undecoded: %q", frag, out)
		}
	}
}

func TestDecodeHTMLEntities(t *testing.T) {
	got := decodeHTMLEntities("a &lt;b&gt; &amp; &quot;c&quot; &#39;d&#39;")
	want := `a <b> & "c" 'd'`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderListNumbering(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme(true))
	out, _ := r.Render("1. satu\n2. dua\n3. tiga", 80)
	for _, frag := range []string{"1.", "2.", "3.", "satu", "dua", "tiga"} {
		if !strings.Contains(out, frag) {
			t.Fatalf("ordered list lost %q: %q", frag, out)
		}
	}
}
