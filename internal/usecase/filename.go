package usecase

import (
	"path"
	"path/filepath"
	"strings"
)

// maxFilenameLength matches the common filesystem limit; the sanitized name
// becomes part of an object key.
const maxFilenameLength = 255

// SanitizeFilename strips directory components and replaces anything outside
// a conservative allowlist with underscores. The result is safe to embed in
// object keys and Content-Disposition headers.
func SanitizeFilename(name string) string {
	// Drop path components regardless of separator style.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}

	result := strings.Trim(sb.String(), "._")
	if result == "" {
		return "file"
	}

	if len(result) > maxFilenameLength {
		result = truncatePreservingExtension(result)
	}
	return result
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_':
		return true
	}
	return false
}

func truncatePreservingExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) >= maxFilenameLength {
		return name[:maxFilenameLength]
	}
	return name[:maxFilenameLength-len(ext)] + ext
}
