package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("変数カウントは零です ", 8)
	lines := wrap(s, 20)

	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	var rebuilt strings.Builder
	for i, line := range lines {
		if !utf8.ValidString(line) {
			t.Errorf("line %d split mid-rune: %q", i, line)
		}
		if n := utf8.RuneCountInString(line); n > 20 {
			t.Errorf("line %d has %d runes, want <= 20", i, n)
		}
		rebuilt.WriteString(line)
	}
	if rebuilt.String() != s {
		t.Error("wrap lost content")
	}
}

func TestWrapPreservesParagraphs(t *testing.T) {
	lines := wrap("first\nsecond", 40)
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestWrapEnforcesMinimumWidth(t *testing.T) {
	lines := wrap(strings.Repeat("a", 25), 1)
	for i, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %d longer than the minimum width: %q", i, line)
		}
	}
}
