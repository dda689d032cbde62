package compositor

import "strings"

// wrapText splits text into the lines it occupies inside a box maxWidth
// wide. Explicit newlines always break. Words are never split, so a word
// wider than the box gets a line of its own. A maxWidth of zero or less, or
// a nil measurer, disables wrapping.
func wrapText(text string, maxWidth float64, measure func(string) float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := strings.Split(text, "\n")

	if maxWidth <= 0 || measure == nil {
		return paragraphs
	}

	lines := []string{}

	for _, para := range paragraphs {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if measure(candidate) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}

		lines = append(lines, line)
	}

	return lines
}
