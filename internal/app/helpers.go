package app

import (
	"strings"
)

// NormalizeFormat lower-cases the requested export format, defaulting to PDF
func NormalizeFormat(format string) (string, bool) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatPDF, true
	}
	if _, ok := ContentTypes[format]; !ok {
		return "", false
	}
	return format, true
}
