package xbrl

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// NormalizeText normalizes the Unicode and HTML-entity noise that appears in
// SEC inline-XBRL text: fact values and labels routinely carry non-breaking
// spaces, smart quotes, and stray zero-width characters.
//
// Normalizations performed:
// - HTML entities (&nbsp;, &mdash;, numeric &#NNN;) -> Unicode equivalents
// - Unicode whitespace variants -> regular spaces
// - Zero-width and format characters -> removed
// - CRLF / CR -> LF
func NormalizeText(data []byte) []byte {
	text := string(data)

	text = normalizeHTMLEntities(text)
	text = normalizeWhitespace(text)
	text = removeInvisibleChars(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return []byte(text)
}

var namedEntities = map[string]string{
	"&nbsp;":  " ",
	"&mdash;": "—",
	"&ndash;": "–",
	"&ldquo;": "“",
	"&rdquo;": "”",
	"&lsquo;": "‘",
	"&rsquo;": "’",
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&quot;":  "\"",
	"&apos;":  "'",
	"&sect;":  "§",
	"&reg;":   "®",
	"&trade;": "™",
}

var numericEntityPattern = regexp.MustCompile(`&#(\d+);`)

func normalizeHTMLEntities(text string) string {
	for entity, replacement := range namedEntities {
		text = strings.ReplaceAll(text, entity, replacement)
	}

	text = numericEntityPattern.ReplaceAllStringFunc(text, func(match string) string {
		var code int
		if _, err := fmt.Sscanf(match, "&#%d;", &code); err == nil {
			switch code {
			case 160: // nbsp
				return " "
			default:
				if code < 0x110000 {
					return string(rune(code))
				}
			}
		}
		return match
	})

	return text
}

func normalizeWhitespace(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '\u00A0', r == '\u202F', r == '\u205F', r == '\u3000':
			result.WriteRune(' ')
		case r >= '\u2000' && r <= '\u200A':
			result.WriteRune(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

func removeInvisibleChars(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u180E':
			continue
		default:
			if unicode.Is(unicode.Cf, r) && r != '\t' && r != '\n' && r != '\r' {
				continue
			}
			result.WriteRune(r)
		}
	}

	return result.String()
}
