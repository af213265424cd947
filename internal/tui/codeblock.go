package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
)

// CopyCodeBlock puts a fenced block on the system clipboard.
func CopyCodeBlock(block CodeBlock) error {
	return clipboard.WriteAll(block.Code)
}

// SaveCodeBlock writes a fenced block to dir with a timestamped name and
// the extension derived from the fence language. Returns the written path.
func SaveCodeBlock(block CodeBlock, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("code-%d.%s", time.Now().UnixMilli(), DownloadExt(block.Lang))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(block.Code), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
