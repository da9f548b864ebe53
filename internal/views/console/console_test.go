package console

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/debug-agent/console/internal/protocol"
)

func TestRenderEventTruncatesOnRuneBoundary(t *testing.T) {
	ev := protocol.DebuggerEvent{
		Type:      protocol.EventOutput,
		Timestamp: "2026-01-01T10:11:12Z",
		Content:   strings.Repeat("例外が発生しました", 20),
	}

	out := renderEvent(ev, 60)
	if !utf8.ValidString(out) {
		t.Fatalf("rendered line split mid-rune: %q", out)
	}
	if !strings.Contains(out, "...") {
		t.Error("long content should be truncated with an ellipsis")
	}
}

func TestRenderEventShortContentUntouched(t *testing.T) {
	ev := protocol.DebuggerEvent{
		Type:      protocol.EventInput,
		Timestamp: "2026-01-01T10:11:12Z",
		Content:   "break main.py:42",
	}

	out := renderEvent(ev, 80)
	if !strings.Contains(out, "break main.py:42") {
		t.Errorf("content missing from render: %q", out)
	}
	if strings.Contains(out, "...") {
		t.Errorf("short content should not be truncated: %q", out)
	}
}
