package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClampUTF8Short(t *testing.T) {
	if got := ClampUTF8("hello", 300); got != "hello" {
		t.Errorf("short string should pass through, got %q", got)
	}
}

func TestClampUTF8ExactBoundary(t *testing.T) {
	s := strings.Repeat("a", 300)
	if got := ClampUTF8(s, 300); got != s {
		t.Errorf("string at exactly maxBytes should pass through")
	}
	if got := ClampUTF8(s+"b", 300); len(got) != 300 {
		t.Errorf("expected 300 bytes, got %d", len(got))
	}
}

func TestClampUTF8MultibyteBoundary(t *testing.T) {
	// Each hiragana rune is 3 bytes; 100 runes = 300 bytes.
	s := strings.Repeat("あ", 101)
	got := ClampUTF8(s, 300)
	if len(got) != 300 {
		t.Errorf("expected 300 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("clamp split a multi-byte character")
	}

	// 299 bytes cannot fit the 100th rune; must cut at 297.
	got = ClampUTF8(s, 299)
	if len(got) != 297 {
		t.Errorf("expected 297 bytes (rune boundary), got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("clamp split a multi-byte character")
	}
}

func TestClampUTF8MixedContent(t *testing.T) {
	s := "駅前のカフェ☕ morning vibes"
	got := ClampUTF8(s, 10)
	if len(got) > 10 {
		t.Errorf("expected at most 10 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("clamp produced invalid UTF-8")
	}
	if !strings.HasPrefix(s, got) {
		t.Error("clamp must be a prefix of the input")
	}
}
