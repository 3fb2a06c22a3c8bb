package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonWordChars   = regexp.MustCompile(`[^\w.-]+`)
	repeatedDashes = regexp.MustCompile(`-+`)
)

// SanitizeFilename makes a filename safe for URLs and the filesystem.
// Unicode is folded to its base form, anything outside [A-Za-z0-9_.-]
// becomes a dash, runs of dashes collapse, and leading/trailing dashes
// and dots are stripped so the result cannot be a dotfile.
func SanitizeFilename(name string) string {
	// Fold accented characters to base letters
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}

	s := nonWordChars.ReplaceAllString(b.String(), "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	s = strings.ReplaceAll(s, "-.", ".")
	s = strings.ReplaceAll(s, ".-", ".")
	return s
}

// ValidateFilename checks that a display filename is plausible.
// It is never used to address storage, so only length and path
// separators are rejected.
func ValidateFilename(filename string) error {
	if filename == "" {
		return errors.New("filename is required")
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return errors.New("filename cannot contain directory paths")
	}
	if len(filename) > 255 {
		return errors.New("filename too long (max 255 characters)")
	}
	return nil
}
