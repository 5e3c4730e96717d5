package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("STORIES_TEST_PARAM", "")
	if got := EnvOrDefault("STORIES_TEST_PARAM", "/photobook/prod/min-assets"); got != "/photobook/prod/min-assets" {
		t.Errorf("expected default, got %q", got)
	}

	t.Setenv("STORIES_TEST_PARAM", "/photobook/dev/min-assets")
	if got := EnvOrDefault("STORIES_TEST_PARAM", "/photobook/prod/min-assets"); got != "/photobook/dev/min-assets" {
		t.Errorf("expected override, got %q", got)
	}
}
