package utils

import (
	"fmt"
	"math/rand/v2"
	"unicode"
)

// NewTicketID returns a short human-readable ticket id like REG0427. The id
// space is deliberately small so gate staff can read ids aloud; callers must
// retry on collision.
func NewTicketID() string {
	return fmt.Sprintf("REG%04d", rand.IntN(10000))
}

func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func RemainingEntriesPhrase(n int) string {
	if n == 1 {
		return "1 entry remaining"
	}
	return fmt.Sprintf("%d entries remaining", n)
}
