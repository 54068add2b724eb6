package rag

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the maximum chunk length in characters.
const DefaultChunkSize = 800

var paragraphSplit = regexp.MustCompile(`\n[ \t]*\n`)

// SplitChunks splits text into chunks of at most maxChars characters,
// keeping paragraphs together where possible. Paragraphs are accumulated
// greedily and joined with a blank line; a paragraph longer than maxChars
// is hard-split into fixed-width slices. Whitespace-only input yields nil.
func SplitChunks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	var chunks []string
	var buf string
	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > maxChars {
			// Oversized paragraph: flush whatever accumulated, then slice
			// with no word-boundary awareness.
			if buf != "" {
				chunks = append(chunks, buf)
				buf = ""
			}
			for start := 0; start < len(para); start += maxChars {
				end := start + maxChars
				if end > len(para) {
					end = len(para)
				}
				chunks = append(chunks, para[start:end])
			}
			continue
		}

		if buf == "" {
			buf = para
			continue
		}
		if len(buf)+2+len(para) > maxChars {
			chunks = append(chunks, buf)
			buf = para
		} else {
			buf = buf + "\n\n" + para
		}
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}
