// Package bulkparse turns accumulated bulk-add text into ordered
// (episode name, link) pairs with per-line error reporting.
package bulkparse

import (
	"strings"

	"github.com/meanun/linkshelf/internal/linkcheck"
)

// Pair is one validated episode entry.
type Pair struct {
	Name string
	Link string
}

// LineError describes one malformed input line. Line numbers are 1-based
// and global across all accumulated message blocks.
type LineError struct {
	Line   int
	Raw    string
	Reason string
}

// Result is the outcome of parsing a bulk buffer.
type Result struct {
	Valid  []Pair
	Errors []LineError
	Blank  int
}

// Lines returns the total number of input lines accounted for.
func (r Result) Lines() int {
	return len(r.Valid) + len(r.Errors) + r.Blank
}

// Parse concatenates the message blocks in arrival order, splits them into
// lines, and validates each line independently; a bad line never aborts
// the rest. Each line is "name<whitespace>link": the first run of
// whitespace separates the episode name from the link, and the remainder
// is the link verbatim (after host normalization). Blank lines are
// skipped silently. Valid pairs keep input order, which becomes episode
// creation order at commit.
func Parse(blocks []string) Result {
	var res Result
	lineNo := 0
	for _, block := range blocks {
		block = strings.ReplaceAll(block, "\u200b", "")
		for _, raw := range strings.Split(block, "\n") {
			lineNo++
			line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
			if line == "" {
				res.Blank++
				continue
			}

			name, link, found := splitNameLink(line)
			if !found {
				res.Errors = append(res.Errors, LineError{
					Line: lineNo, Raw: line, Reason: "missing link",
				})
				continue
			}
			link = linkcheck.Normalize(link)
			if !linkcheck.ValidURL(link) {
				res.Errors = append(res.Errors, LineError{
					Line: lineNo, Raw: line, Reason: "invalid link",
				})
				continue
			}
			res.Valid = append(res.Valid, Pair{Name: name, Link: link})
		}
	}
	return res
}

// splitNameLink splits a line at its first whitespace run. found is false
// when the line has no second field.
func splitNameLink(line string) (name, link string, found bool) {
	idx := strings.IndexFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	if idx < 0 {
		return line, "", false
	}
	name = strings.TrimSpace(line[:idx])
	link = strings.TrimSpace(line[idx:])
	if name == "" || link == "" {
		return name, link, false
	}
	return name, link, true
}
