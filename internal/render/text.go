// Package render turns comment bodies into wrapped terminal text.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xhtml "golang.org/x/net/html"
)

// ToText reduces markup in a comment body to plain text and wraps it to
// width display cells. Line breaks typed by the author are kept. Entities are
// decoded; tags other than p, br, pre and a are dropped. Link targets are
// appended in brackets when they differ from the link text.
func ToText(raw string, width int) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre bool
	var anchorURL string
	var anchorStart int

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return Wrap(strings.TrimSpace(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case "br":
				sb.WriteString("\n")
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "a":
				anchorURL = ""
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
				anchorStart = sb.Len()
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				text := strings.TrimSpace(sb.String()[anchorStart:])
				if anchorURL != "" && text != anchorURL {
					sb.WriteString(" [")
					sb.WriteString(anchorURL)
					sb.WriteString("]")
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			text := tokenizer.Token().Data
			if !inPre {
				sb.WriteString(text)
				continue
			}
			for i, line := range strings.Split(text, "\n") {
				if i > 0 {
					sb.WriteString("\n")
				}
				if line != "" {
					sb.WriteString("    ")
					sb.WriteString(line)
				}
			}
		}
	}
}

// Wrap performs word wrapping to width display cells. Lines indented by four
// spaces are left alone. Words wider than width are split.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for _, word := range splitLong(words, width) {
			wlen := lipgloss.Width(word)
			if lineLen > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if lineLen > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

func splitLong(words []string, width int) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		for lipgloss.Width(w) > width {
			var cut, cells int
			for i, r := range w {
				rw := lipgloss.Width(string(r))
				if cells+rw > width {
					cut = i
					break
				}
				cells += rw
			}
			if cut == 0 {
				break
			}
			out = append(out, w[:cut])
			w = w[cut:]
		}
		out = append(out, w)
	}
	return out
}

// Truncate shortens s to at most width display cells, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	var sb strings.Builder
	cells := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if cells+rw > width-1 {
			break
		}
		sb.WriteRune(r)
		cells += rw
	}
	sb.WriteString("…")
	return sb.String()
}
