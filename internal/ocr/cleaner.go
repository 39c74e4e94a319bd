package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

const minIngredientTextLen = 20

var (
	lineBreaks     = regexp.MustCompile(`[\r\n]+`)
	repeatedCommas = regexp.MustCompile(`,\s*,+`)
	labelNoise     = regexp.MustCompile(`[^\w\s,().%-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	trailingComma  = regexp.MustCompile(`,\s*$`)
)

// CleanIngredientText turns raw OCR output into a comma separated
// ingredient list. It returns "" when nothing usable is left.
func CleanIngredientText(raw string) string {
	text := strings.Map(normalizeSpace, raw)
	text = lineBreaks.ReplaceAllString(text, ", ")
	text = repeatedCommas.ReplaceAllString(text, ",")
	text = labelNoise.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = trailingComma.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if strings.Contains(text, ",") && len(text) > minIngredientTextLen {
		return text
	}

	if len(text) > minIngredientTextLen {
		return strings.Join(splitOnCapitals(text), ", ")
	}

	return ""
}

// normalizeSpace folds Unicode spaces such as NBSP into ' ', since RE2's
// \s only matches ASCII. Line breaks are kept for lineBreaks.
func normalizeSpace(r rune) rune {
	if r != '\n' && r != '\r' && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// splitOnCapitals starts a new piece at every word that begins with an
// upper-case letter and drops pieces of two characters or fewer.
func splitOnCapitals(text string) []string {
	var (
		pieces  []string
		current []string
	)
	flush := func() {
		piece := strings.TrimSpace(strings.Join(current, " "))
		if len(piece) > 2 {
			pieces = append(pieces, piece)
		}
		current = current[:0]
	}

	for _, word := range strings.Fields(text) {
		first := []rune(word)[0]
		if unicode.IsUpper(first) && len(current) > 0 {
			flush()
		}
		current = append(current, word)
	}
	flush()

	return pieces
}
