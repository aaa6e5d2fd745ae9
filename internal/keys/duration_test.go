package keys

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1000ms", time.Second},
		{"1s", time.Second},
		{"1000", time.Second},
		{"0ms", 0},
		{"0", 0},
		{"500ms", 500 * time.Millisecond},
		{"5S", 5 * time.Second},
		{"2m", 2 * time.Minute},
		{" 2m ", 2 * time.Minute},
		{"5m", 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if err != nil {
				t.Fatalf("ParseDuration(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDurationEquivalentForms(t *testing.T) {
	for _, in := range []string{"1s", "1000ms", "1000"} {
		got, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error: %v", in, err)
		}
		if got.Milliseconds() != 1000 {
			t.Errorf("ParseDuration(%q) = %dms, want 1000ms", in, got.Milliseconds())
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	tests := []string{"", "abc", "1000x", "-1000ms", "-5s", "ms", "1.5s"}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseDuration(in); !errors.Is(err, ErrInvalidDuration) {
				t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidDuration", in, err)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(1500 * time.Millisecond); got != "1500ms" {
		t.Errorf("FormatDuration = %q, want \"1500ms\"", got)
	}
}
