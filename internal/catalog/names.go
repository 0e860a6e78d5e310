// File path: internal/catalog/names.go
package catalog

import (
	"regexp"
	"strings"
)

var (
	separatorRunes = regexp.MustCompile(`[ -]`)
	invalidRunes   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// SanitizeName converts an arbitrary CSV header or filename into a safe SQL
// identifier: spaces and hyphens become underscores, any other rune outside
// [A-Za-z0-9_] is dropped, and a leading digit gets an underscore prefix.
func SanitizeName(name string) string {
	clean := separatorRunes.ReplaceAllString(name, "_")
	clean = invalidRunes.ReplaceAllString(clean, "")
	if clean != "" && clean[0] >= '0' && clean[0] <= '9' {
		clean = "_" + clean
	}
	return clean
}

// DisplayName produces the chooser label for a column. A handful of common
// part-table abbreviations expand to their conventional forms; everything
// else is title-cased with underscores turned into spaces.
func DisplayName(column string) string {
	switch strings.ToLower(column) {
	case "mpn":
		return "MPN"
	case "lcsc":
		return "LCSC"
	case "mfg":
		return "Manufacturer"
	}
	return titleCase(strings.ReplaceAll(column, "_", " "))
}

// CategoryDisplayName derives the library section label from a CSV base
// filename, e.g. "chip_resistors" -> "Chip Resistors".
func CategoryDisplayName(baseName string) string {
	return titleCase(strings.ReplaceAll(baseName, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if len(runes) > 0 && runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] = runes[0] - 'a' + 'A'
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
