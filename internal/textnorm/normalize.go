package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// replacements fixes ligatures and smart punctuation that PDF text extraction
// tends to leave behind. The table is fixed; entries are applied literally.
var replacements = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"—", "--",
	"–", "-",
	"…", "...",
)

var (
	spaceRuns   = regexp.MustCompile(` +`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans raw extracted PDF text: it strips null bytes, fixes
// ligatures and smart punctuation, collapses space runs, and re-segments
// paragraphs. The result is stable: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\x00", "")
	text = norm.NFC.String(text)
	text = replacements.Replace(text)
	text = spaceRuns.ReplaceAllString(text, " ")
	return resegment(text)
}

// resegment splits text into trimmed non-empty lines and re-inserts a blank
// separator after a line ending in sentence-terminal punctuation when the
// next line starts with an uppercase letter.
func resegment(text string) string {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		out = append(out, line)
		if i < len(lines)-1 && endsSentence(line) && startsUpper(lines[i+1]) {
			out = append(out, "")
		}
	}

	joined := strings.Join(out, "\n")
	return newlineRuns.ReplaceAllString(joined, "\n\n")
}

func endsSentence(line string) bool {
	return strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") ||
		strings.HasSuffix(line, "?") || strings.HasSuffix(line, ":")
}

func startsUpper(line string) bool {
	for _, r := range line {
		return unicode.IsUpper(r)
	}
	return false
}
