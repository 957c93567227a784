package agent

import "strings"

// trimSpaceTo trims whitespace and truncates to max runes.
func trimSpaceTo(s string, max int) string {
	t := strings.TrimSpace(s)
	r := []rune(t)
	if len(r) > max {
		return string(r[:max])
	}
	return t
}

// shortQuote pulls a display-ready quote out of stored exchange text:
// the last "name: text" line, whitespace collapsed, truncated to
// maxLen with an ellipsis.
func shortQuote(exchangeText string, maxLen int) string {
	var candidate string
	for _, ln := range strings.Split(exchangeText, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.Contains(ln, ":") {
			candidate = ln
		}
	}
	if candidate == "" {
		candidate = strings.TrimSpace(exchangeText)
	}
	candidate = strings.Join(strings.Fields(candidate), " ")
	if len([]rune(candidate)) > maxLen {
		r := []rune(candidate)
		candidate = strings.TrimRight(string(r[:maxLen-1]), " ") + "…"
	}
	return candidate
}
