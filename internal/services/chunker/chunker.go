// Package chunker provides size-bounded text splitting used by ingestion
// and prompt assembly. Splits are pure functions of their input.
package chunker

import "strings"

// SplitWords splits text into chunks of at most maxWords whitespace-delimited
// words. Word boundaries are preserved; joining the chunks with single spaces
// reconstructs the whitespace-normalized input. A non-positive maxWords is
// treated as 1.
func SplitWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// SplitChars splits text into chunks of at most maxChars runes. The final
// chunk carries the remainder. A non-positive maxChars is treated as 1.
func SplitChars(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// WordCount reports the number of whitespace-delimited words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
