package game

import (
	"fmt"

	"github.com/robalobadob/bullscows/internal/code"
)

// Describe turns feedback into the line shown under a human guess.
func Describe(fb code.Feedback) string {
	switch {
	case fb.Won():
		return "Congratulations! You've guessed my number!"
	case fb.Bulls == 0 && fb.Cows == 0:
		return "No match at all. Try a completely different number."
	}
	return fmt.Sprintf("Your guess has %d %s and %d %s.",
		fb.Bulls, plural(fb.Bulls, "bull"), fb.Cows, plural(fb.Cows, "cow"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
