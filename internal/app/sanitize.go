package app

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

const (
	maxFilenameLength = 60
	defaultFilename   = "schedule"
)

// SanitizeLatin1 restricts s to code points 0-255. Runes outside that range
// are canonically decomposed and only the representable components are kept,
// so "ő" becomes "o" and "✓" disappears.
func SanitizeLatin1(s string) string {
	if isLatin1(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxLatin1 {
			b.WriteRune(r)
			continue
		}
		for _, c := range norm.NFD.String(string(r)) {
			if c <= unicode.MaxLatin1 {
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

// EncodeLatin1 sanitizes s and returns it as single-byte ISO 8859-1, which is
// what the PDF core fonts expect.
func EncodeLatin1(s string) string {
	out, err := charmap.ISO8859_1.NewEncoder().String(SanitizeLatin1(s))
	if err != nil {
		// unreachable after SanitizeLatin1, fall back to the ASCII subset
		return strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}
	return out
}

// DownloadFilename derives a safe attachment name from the task description.
// Only ASCII letters, digits, '-' and '_' survive; everything else, path
// separators included, collapses into a single underscore.
func DownloadFilename(task, ext string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range SanitizeLatin1(task) {
		for _, c := range norm.NFD.String(string(r)) {
			switch {
			case c <= unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-'):
				if pendingSep && b.Len() > 0 {
					b.WriteByte('_')
				}
				pendingSep = false
				b.WriteRune(c)
			case c > unicode.MaxASCII && unicode.Is(unicode.Mn, c):
				// accent of a decomposed letter
			default:
				pendingSep = true
			}
		}
		if b.Len() >= maxFilenameLength {
			break
		}
	}

	name := b.String()
	if len(name) > maxFilenameLength {
		name = strings.TrimRight(name[:maxFilenameLength], "_-")
	}
	if name == "" {
		name = defaultFilename
	}
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}
