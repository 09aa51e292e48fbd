package embedding

import (
	"strings"
)

// Chunk slices a transcript into overlapping windows of at most maxRunes
// runes. Windows break on sentence boundaries where possible; the
// overlap carries trailing sentences into the next window so retrieval
// does not lose context at the seam.
func Chunk(text string, maxRunes, overlapRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		maxRunes = 800
	}
	if overlapRunes < 0 || overlapRunes >= maxRunes {
		overlapRunes = maxRunes / 4
	}
	if len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var window []string
	windowLen := 0
	// fresh tracks whether the window gained content since the last
	// flush; a window holding nothing but carried overlap must never be
	// emitted on its own, it would duplicate the previous chunk's tail.
	fresh := false

	flush := func() {
		if len(window) == 0 {
			return
		}
		if fresh {
			chunks = append(chunks, strings.TrimSpace(strings.Join(window, "")))
		}
		fresh = false
		if overlapRunes <= 0 {
			window = nil
			windowLen = 0
			return
		}

		// Seed the next window with trailing sentences up to the overlap.
		var carry []string
		carryLen := 0
		for i := len(window) - 1; i >= 0; i-- {
			l := len([]rune(window[i]))
			if carryLen+l > overlapRunes && carryLen > 0 {
				break
			}
			carry = append([]string{window[i]}, carry...)
			carryLen += l
			if carryLen >= overlapRunes {
				break
			}
		}
		window = carry
		windowLen = carryLen
	}

	for _, sentence := range sentences {
		runes := []rune(sentence)
		if len(runes) > maxRunes {
			// A single oversized sentence is hard-split.
			flush()
			window = nil
			windowLen = 0
			step := maxRunes - overlapRunes
			for start := 0; start < len(runes); start += step {
				end := start + maxRunes
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
				if end == len(runes) {
					break
				}
			}
			continue
		}
		if windowLen+len(runes) > maxRunes {
			flush()
		}
		window = append(window, sentence)
		windowLen += len(runes)
		if strings.TrimSpace(sentence) != "" {
			fresh = true
		}
	}
	if fresh && windowLen > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(window, "")))
	}

	// Drop empties produced by whitespace-only sentences.
	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
	'\n': true,
}

func splitSentences(text string) []string {
	var sentences []string
	var current []rune
	for _, r := range text {
		current = append(current, r)
		if sentenceEnders[r] {
			sentences = append(sentences, string(current))
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, string(current))
	}
	return sentences
}
