package domain

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	nbsp = " " // non-breaking space
	zwsp = "​" // zero-width space
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// numberRe matches the first float-like substring, signs and decimals
	// included, e.g. "-0.5" in "< -0.5 mg/L".
	numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

	// hourNotationRe matches the French "14h30" time notation.
	hourNotationRe = regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})`)
)

// dateLayouts are tried in order: datetime before date-only, day-first before
// ISO. The first successful parse wins.
var dateLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CleanText decodes HTML entities, replaces non-breaking and zero-width
// spaces, collapses whitespace runs, applies NFC normalization, and trims.
func CleanText(s string) string {
	t := html.UnescapeString(s)
	t = strings.ReplaceAll(t, nbsp, " ")
	t = strings.ReplaceAll(t, zwsp, "")
	t = whitespaceRe.ReplaceAllString(t, " ")
	t = norm.NFC.String(t)
	return strings.TrimSpace(t)
}

// accentStripper decomposes to NFD, drops combining marks, and recomposes,
// turning "Conformité" into "Conformite".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel lowercases, strips diacritics, and collapses whitespace.
// All dictionary fragments and report labels go through this before matching.
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}

// ParseFrenchFloat extracts the first numeric value from a free-text result.
// Comparison operators and units are ignored and French comma decimals are
// accepted: "<0,1" yields 0.1, "12.34 mg/L" yields 12.34. Returns false for
// purely textual results such as "nd".
func ParseFrenchFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	candidate := numberRe.FindString(strings.ReplaceAll(s, ",", "."))
	if candidate == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDateAny parses the date/time notations seen in reports. "HhMM" times
// are normalized to "H:MM" first, then each known layout is tried in fixed
// priority order. Returns false when nothing matches.
func ParseDateAny(s string) (time.Time, bool) {
	s = hourNotationRe.ReplaceAllString(strings.TrimSpace(s), "$1:$2")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SynthesizeID builds the analysis identifier "DD-MM-YYYY-<INSEE>". A zero
// sampling time falls back to the current date, a blank INSEE code to
// "00000", so the function is total: it always produces an identifier, and
// the same (date, INSEE) pair always produces the same one.
func SynthesizeID(sampledAt time.Time, insee string) string {
	if sampledAt.IsZero() {
		sampledAt = clock.Now()
	}
	insee = strings.TrimSpace(insee)
	if insee == "" {
		insee = "00000"
	}
	return sampledAt.Format("02-01-2006") + "-" + insee
}
