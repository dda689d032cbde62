package pdfutils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// RemoveNul strips control and replacement characters, which the standard
// fonts have no glyphs for.
func RemoveNul(str string) string {
	return strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, str)
}

var nlAndSpace = regexp.MustCompile(`[\n\s]+`)

// SanitizeFileName reduces an uploaded file name to a safe base name with
// runs of whitespace replaced by underscores.
func SanitizeFileName(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	name = RemoveNul(strings.TrimSpace(name))
	name = nlAndSpace.ReplaceAllString(name, "_")

	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}

	return name
}
