package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTicketID(t *testing.T) {
	format := regexp.MustCompile(`^REG\d{4}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, format, NewTicketID())
	}
}

func TestDigitCount(t *testing.T) {
	assert.Equal(t, 0, DigitCount(""))
	assert.Equal(t, 0, DigitCount("abc"))
	assert.Equal(t, 11, DigitCount("0917-123-4567"))
	assert.Equal(t, 12, DigitCount("+63 917 123 4567"))
}

func TestRemainingEntriesPhrase(t *testing.T) {
	assert.Equal(t, "0 entries remaining", RemainingEntriesPhrase(0))
	assert.Equal(t, "1 entry remaining", RemainingEntriesPhrase(1))
	assert.Equal(t, "3 entries remaining", RemainingEntriesPhrase(3))
}
