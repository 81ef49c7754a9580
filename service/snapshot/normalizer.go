package snapshot

import (
	"os"
	"strings"
)

// CurrentDirToken replaces the machine specific working directory in persisted golden files.
const CurrentDirToken = "$CURRENT_DIR"

// Normalizer rewrites the working directory prefix into a portable placeholder.
//
// Only two forms are rewritten: the file URL prefix (file://<dir>) and the
// backtick quoted path prefix (`<dir>). Other occurrences are left untouched.
type Normalizer struct {
	CurrentDir string
}

// NewNormalizer creates a normalizer for dir; an empty dir resolves to the process working directory.
func NewNormalizer(dir string) *Normalizer {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &Normalizer{CurrentDir: strings.TrimSuffix(dir, "/")}
}

// Normalize replaces the working directory prefixes with CurrentDirToken.
func (n *Normalizer) Normalize(text string) string {
	if n == nil || n.CurrentDir == "" {
		return text
	}
	text = strings.ReplaceAll(text, "file://"+n.CurrentDir, "file://"+CurrentDirToken)
	return strings.ReplaceAll(text, "`"+n.CurrentDir, "`"+CurrentDirToken)
}

// NormalizeURL rewrites only the file URL form.
func (n *Normalizer) NormalizeURL(text string) string {
	if n == nil || n.CurrentDir == "" {
		return text
	}
	return strings.ReplaceAll(text, "file://"+n.CurrentDir, "file://"+CurrentDirToken)
}
