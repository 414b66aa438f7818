package sketch

import "math/rand"

var easyWords = []string{
	"cat", "dog", "sun", "moon", "star", "tree", "fish", "bird", "house",
	"car", "boat", "ball", "book", "cake", "door", "shoe", "sock", "hat",
	"cup", "key", "bed", "egg", "ant", "bee", "cow", "pig", "fox", "owl",
}

var normalWords = []string{
	"guitar", "rocket", "castle", "dragon", "pirate", "robot", "wizard",
	"bridge", "camera", "candle", "ladder", "mirror", "pencil", "pillow",
	"rainbow", "spider", "tractor", "volcano", "windmill", "anchor",
	"balloon", "compass", "dolphin", "feather", "hammock", "igloo",
	"jungle", "kangaroo", "lantern", "mermaid", "octopus", "penguin",
}

var hardWords = []string{
	"archipelago", "chandelier", "hibernation", "kaleidoscope",
	"lighthouse keeper", "metamorphosis", "parachute", "quicksand",
	"scaffolding", "stethoscope", "tightrope walker", "tumbleweed",
	"ventriloquist", "whirlpool", "accordion", "gargoyle", "hourglass",
	"periscope", "silhouette", "trampoline",
}

func wordPool(difficulty string, custom []string) []string {
	var pool []string
	switch difficulty {
	case "easy":
		pool = easyWords
	case "hard":
		pool = hardWords
	default:
		pool = normalWords
	}
	if len(custom) == 0 {
		return pool
	}
	merged := make([]string, 0, len(pool)+len(custom))
	merged = append(merged, pool...)
	merged = append(merged, custom...)
	return merged
}

// pickWords draws n distinct random words from the pool for the given
// difficulty, merged with any host-supplied custom words.
func pickWords(n int, difficulty string, custom []string) []string {
	pool := wordPool(difficulty, custom)
	if n < 1 {
		n = 1
	}
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
