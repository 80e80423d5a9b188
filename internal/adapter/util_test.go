package adapter

import (
	"testing"
	"time"
)

func TestExtractText(t *testing.T) {
	cases := map[string]string{
		"  Marketing   Coordinator \n":  "Marketing Coordinator",
		"<b>Footwear</b> Intern":        "Footwear Intern",
		"R&amp;D Analyst":               "R&D Analyst",
		"":                              "",
		"\t\n  ":                        "",
	}
	for in, want := range cases {
		if got := extractText(in); got != want {
			t.Errorf("extractText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	if got := parseTimestamp("2026-08-24T10:30:00Z"); got == nil || !got.Equal(time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("rfc3339: %v", got)
	}
	if got := parseTimestamp("2026-08-24T10:30:00"); got == nil {
		t.Error("expected naive datetime to parse")
	}
	if got := parseTimestamp("2026-08-24"); got == nil {
		t.Error("expected bare date to parse")
	}
	if got := parseTimestamp("last tuesday"); got != nil {
		t.Errorf("unknown format should map to nil, got %v", got)
	}
	if got := parseTimestamp(""); got != nil {
		t.Errorf("empty should map to nil, got %v", got)
	}
}
