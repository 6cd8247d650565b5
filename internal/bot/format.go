package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/meanun/linkshelf/internal/models"
)

const (
	// epPrefix is the Khmer word for "episode". Stored episode names
	// carry it so rendered lists read naturally.
	epPrefix = "ភាគ"

	labelTitles   = "បញ្ចីរឿង៖"
	labelAllEps   = "ភាគទាំងអស់"
	divider       = "━━━━━━━━━━━━━━━━━━"
	maxChunkChars = 3500
)

var khmerDigits = [10]rune{'០', '១', '២', '៣', '៤', '៥', '៦', '៧', '៨', '៩'}

// toKhmerDigits renders n with Khmer numerals, zero-padded to width.
func toKhmerDigits(n, width int) string {
	s := fmt.Sprintf("%0*d", width, n)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(khmerDigits[r-'0'])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeEpisodeName prefixes bare episode names with the Khmer
// episode word. Names that already carry it pass through.
func normalizeEpisodeName(name string) string {
	n := strings.TrimSpace(name)
	if strings.HasPrefix(n, epPrefix) {
		return n
	}
	return epPrefix + n
}

// displayEpisodeName repairs names whose prefix was mangled into "???"
// by an earlier encoding bug.
func displayEpisodeName(name string) string {
	n := strings.TrimSpace(name)
	if strings.HasPrefix(n, "???") {
		n = epPrefix + n[3:]
	}
	return n
}

// chunkText splits text into chunks of at most max bytes, preferring to
// break at a newline in the second half of each chunk so lines stay whole.
func chunkText(text string, max int) []string {
	if max <= 0 {
		max = maxChunkChars
	}
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= max {
			chunks = append(chunks, text)
			break
		}
		chunk := text[:max]
		breakAt := -1
		for i := max - 1; i >= max/2; i-- {
			if chunk[i] == '\n' {
				breakAt = i
				break
			}
		}
		if breakAt >= 0 {
			chunks = append(chunks, text[:breakAt])
			text = text[breakAt+1:]
		} else {
			// Back off to a rune boundary so a multi-byte character is
			// never split across chunks.
			cut := max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			chunks = append(chunks, text[:cut])
			text = text[cut:]
		}
	}
	return chunks
}

// copyAllText renders a title's full episode list for copy-paste
// reposting. The leading zero-width space keeps Telegram from parsing
// the "#Link" marker as a hashtag.
func copyAllText(titleName string, eps []models.Episode) string {
	var b strings.Builder
	b.WriteString("#\u200bLinkរឿង៖\n")
	b.WriteString(titleName)
	b.WriteString("\n")
	for i, ep := range eps {
		if i > 0 {
			b.WriteString("\n")
		}
		name := strings.ReplaceAll(displayEpisodeName(ep.Name), "\n", " ")
		url := strings.ReplaceAll(strings.TrimSpace(ep.URL), "\n", "")
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(url)
	}
	return b.String()
}

// episodeLabels renders the /listep output: one Khmer-numbered label
// per line in the inclusive range, blank-line separated for easy
// copy-paste into a bulk add.
func episodeLabels(start, end int) string {
	lines := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		lines = append(lines, epPrefix+toKhmerDigits(i, 2))
	}
	return strings.Join(lines, "\n\n")
}
