package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"gemini_api_key", "abc123", "set_id", "s-1"})
	if len(out) != 4 {
		t.Fatalf("len: want=4 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api key: want=[REDACTED] got=%v", out[1])
	}
	if out[3] != "s-1" {
		t.Fatalf("set id: want=s-1 got=%v", out[3])
	}
}

func TestSanitizeKVsClipsMaterial(t *testing.T) {
	long := strings.Repeat("a", 1000)
	out := sanitizeKVs([]interface{}{"summary", long})
	got, ok := out[1].(string)
	if !ok {
		t.Fatalf("summary: want string got=%T", out[1])
	}
	if !strings.HasPrefix(got, strings.Repeat("a", maxMaterialChars)+"...") {
		t.Fatalf("summary not clipped: %q", got[:20])
	}
	if !strings.HasSuffix(got, "(1000 chars)") {
		t.Fatalf("summary suffix: got=%q", got[len(got)-20:])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"status", "ok", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key not preserved: %v", out)
	}
}
