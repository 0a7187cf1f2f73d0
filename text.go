package docscout

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLinesRe      = regexp.MustCompile(`\n{3,}`)
)

// CleanWhitespace collapses runs of horizontal whitespace, trims every line,
// caps consecutive blank lines at one and trims the result.
func CleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// zeroWidth lists invisible characters some generators put into headings.
const zeroWidth = "\u200B\u200C\u200D\u2060\uFEFF"

// ContainsZeroWidth reports whether s contains a zero-width space or joiner.
func ContainsZeroWidth(s string) bool {
	return strings.ContainsAny(s, zeroWidth)
}

// StripZeroWidth removes zero-width spaces and joiners from s.
func StripZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(zeroWidth, r) {
			return -1
		}
		return r
	}, s)
}

// CleanMarkdownWhitespace is CleanWhitespace for text containing fenced code
// blocks (``` or ~~~). Each block is swapped for a placeholder while the
// rest is cleaned, then restored verbatim. An unclosed fence runs to the end
// of the text.
func CleanMarkdownWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")

	var (
		out    []string
		blocks []string
		fence  string
		block  []string
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if fence == "" {
			if marker := fenceMarker(trimmed); marker != "" {
				fence = marker
				block = []string{line}
				continue
			}
			out = append(out, line)
			continue
		}
		block = append(block, line)
		if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
			out = append(out, placeholder(len(blocks)))
			blocks = append(blocks, strings.Join(block, "\n"))
			fence, block = "", nil
		}
	}
	if fence != "" {
		out = append(out, placeholder(len(blocks)))
		blocks = append(blocks, strings.Join(block, "\n"))
	}

	cleaned := CleanWhitespace(strings.Join(out, "\n"))
	for i, b := range blocks {
		cleaned = strings.Replace(cleaned, placeholder(i), b, 1)
	}
	return cleaned
}

// fenceMarker returns the opening fence of line (``` or ~~~, possibly
// longer), or "" when line does not open a code block.
func fenceMarker(line string) string {
	for _, c := range []string{"`", "~"} {
		if strings.HasPrefix(line, c+c+c) {
			n := len(line) - len(strings.TrimLeft(line, c))
			return strings.Repeat(c, n)
		}
	}
	return ""
}

func placeholder(i int) string {
	return "\x00CODEBLOCK" + strconv.Itoa(i) + "\x00"
}
