package sketch

import (
	"math/rand"
	"strings"
	"unicode"
)

// letterPositions returns the indices of the word's letter runes in a
// random order. The shuffle happens once per word, so the positions
// revealed at hint n are always a strict subset of those at hint n+1.
func letterPositions(word string) []int {
	var idx []int
	for i, r := range []rune(word) {
		if unicode.IsLetter(r) {
			idx = append(idx, i)
		}
	}
	rand.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}

// revealCount is how many letter positions hint number n uncovers:
// floor(letters/3) per reveal, never the whole word.
func revealCount(letters, n int) int {
	count := (letters / 3) * n
	if count > letters-1 {
		count = letters - 1
	}
	if count < 0 {
		count = 0
	}
	return count
}

// maskWord renders the hint string: revealed letters shown, remaining
// letters masked with underscores, non-letters (spaces, hyphens) always
// visible.
func maskWord(word string, order []int, reveals int) string {
	runes := []rune(word)
	shown := make(map[int]bool, len(order))
	for _, i := range order[:revealCount(len(order), reveals)] {
		shown[i] = true
	}
	var sb strings.Builder
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r):
			sb.WriteRune(r)
		case shown[i]:
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
