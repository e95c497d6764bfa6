package textx

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, "..", Truncate("anything", 2))

	long := strings.Repeat("é", 400)
	got := Truncate(long, 500)
	assert.LessOrEqual(t, len(got), 500)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestWordCount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 4, WordCount(" I led the\nmigration "))
}
