// Package htmlreduce strips presentation-only markup from raw HTML before it
// is handed to the extraction service. Data-bearing script blocks (JSON-LD,
// embedded framework state, inline JSON with event data) are kept verbatim:
// on JavaScript-heavy pages they often carry the actual calendar in
// machine-readable form.
package htmlreduce

import (
	"regexp"
	"unicode/utf8"
)

var (
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	styleRe      = regexp.MustCompile(`(?is)<style.*?</style>`)
	scriptRe     = regexp.MustCompile(`(?is)<script.*?</script>`)
	svgRe        = regexp.MustCompile(`(?is)<svg.*?</svg>`)
	whitespaceRe = regexp.MustCompile(`\s{2,}`)

	dataScriptRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)application/ld\+json`),
		regexp.MustCompile(`(?i)__NUXT__`),
		regexp.MustCompile(`(?i)dataLayer`),
		regexp.MustCompile(`(?i)"@type"\s*:`),
		regexp.MustCompile(`(?i)"events"\s*:`),
	}
)

// Reduce is a pure text transform: it removes comments, styles, inline SVG,
// and non-data scripts, collapses whitespace runs, and truncates the result
// to maxLen as a last resort.
func Reduce(html string, maxLen int) string {
	cleaned := commentRe.ReplaceAllString(html, "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	cleaned = scriptRe.ReplaceAllStringFunc(cleaned, func(block string) string {
		if isDataScript(block) {
			return block
		}
		return ""
	})

	cleaned = svgRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")

	return truncate(cleaned, maxLen)
}

func isDataScript(block string) bool {
	for _, re := range dataScriptRes {
		if re.MatchString(block) {
			return true
		}
	}
	return false
}

// truncate cuts at maxLen bytes without splitting a UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
