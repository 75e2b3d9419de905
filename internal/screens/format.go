package screens

import "strings"

// MaxDifficulty is the top of the difficulty scale.
const MaxDifficulty = 5

// Stars renders a difficulty as filled and empty stars.
func Stars(difficulty int) string {
	d := min(max(difficulty, 0), MaxDifficulty)
	return strings.Repeat("★", d) + strings.Repeat("☆", MaxDifficulty-d)
}
