package overlay

import (
	"os"
	"strings"
)

// FontResolver maps overlay font names to font files.
type FontResolver struct {
	Files       map[string]string
	DefaultPath string
	// Exists reports whether a font file is present. Defaults to a stat check.
	Exists func(path string) bool
}

// NewFontResolver builds a resolver from a name-to-file map and fallback path.
func NewFontResolver(files map[string]string, defaultPath string) *FontResolver {
	copied := make(map[string]string, len(files))
	for name, path := range files {
		copied[name] = path
	}
	return &FontResolver{Files: copied, DefaultPath: defaultPath}
}

// Resolve returns the font file for name, or the default font file when the
// name is unknown or its file is missing.
func (r *FontResolver) Resolve(name string) string {
	if r == nil {
		return ""
	}
	path, ok := r.Files[strings.TrimSpace(name)]
	if !ok || path == "" {
		return r.DefaultPath
	}
	exists := r.Exists
	if exists == nil {
		exists = fileExists
	}
	if !exists(path) {
		return r.DefaultPath
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
