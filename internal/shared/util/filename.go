package util

import (
	"path/filepath"
	"strings"
)

// FileExtension recovers a usable extension from a client-supplied filename.
// The filename itself is never trusted as a storage path; only the extension
// survives into the stored object name.
func FileExtension(name string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filepath.Base(name))))
	if ext == "." || strings.ContainsAny(ext, "/\\") || strings.Contains(ext, "..") {
		return ""
	}
	return ext
}
