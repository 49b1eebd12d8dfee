package review

import "unicode/utf8"

// Ellipsis marks truncated text.
const Ellipsis = "…"

// TruncateText truncates text to maxWidth runes with an ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	ellipsisLen := utf8.RuneCountInString(Ellipsis)
	if utf8.RuneCountInString(text) <= maxWidth {
		return text, false
	}

	// Need space for ellipsis
	if maxWidth <= ellipsisLen {
		runes := []rune(Ellipsis)
		return string(runes[:maxWidth]), true
	}

	runes := []rune(text)
	return string(runes[:maxWidth-ellipsisLen]) + Ellipsis, true
}

// VisibleRange computes the start and end indices for a scrollable list so
// that selectedIdx stays in view. items[start:end] should be displayed.
func VisibleRange(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if maxVisible <= 0 {
		return 0, 0
	}
	if totalItems <= maxVisible {
		return 0, totalItems
	}

	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}

	end = start + maxVisible
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
