package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// NormalizeExtension returns the case-folded extension without its leading
// dots. "PDF", ".pdf" and "..Pdf" all normalize to "pdf".
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return cases.Fold().String(ext)
}

// ExtensionOf returns the normalized extension of a base filename. Names
// without a dot, and names whose only dot is the leading one, have no
// extension.
func ExtensionOf(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	idx := strings.LastIndexByte(trimmed, '.')
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return NormalizeExtension(trimmed[idx+1:])
}

// IsSafeSegment reports whether value can be used as a single directory name
// beneath another directory without escaping it.
func IsSafeSegment(value string) bool {
	value = strings.TrimSpace(value)
	switch value {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(value, "/\\") && !strings.ContainsRune(value, 0)
}
