package rag

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// SplitText splits text into overlapping, sentence-aware chunks of at most
// chunkSize characters. Whitespace runs are normalized to single spaces
// before chunking. The window end snaps back to the last sentence-ending
// period or newline when that boundary lies past the midpoint of the window;
// otherwise the window is cut at the raw boundary. Adjacent chunks overlap
// by up to overlap characters.
//
// The function is pure: same input, same output, no side effects. Empty or
// whitespace-only input yields no chunks; input shorter than chunkSize
// yields exactly one. A negative overlap is treated as zero; an overlap of
// chunkSize or more is clamped to chunkSize/2 so the window always advances.
func SplitText(text string, chunkSize, overlap int) []string {
	var chunks []string

	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return chunks
	}

	if chunkSize < 1 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	runes := []rune(text)
	pos := 0

	for pos < len(runes) {
		end := pos + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			low := end - chunkSize
			if low < 0 {
				low = 0
			}
			best := -1
			for i := end; i >= low; i-- {
				if runes[i] == '.' || runes[i] == '\n' {
					best = i
					break
				}
			}
			if best > pos+chunkSize/2 {
				end = best + 1
			}
		}

		chunk := strings.TrimSpace(string(runes[pos:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		pos = end - overlap
		// A trailing fragment shorter than the overlap would never advance.
		if pos >= len(runes)-overlap {
			break
		}
	}

	return chunks
}
