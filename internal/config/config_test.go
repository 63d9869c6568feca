package config

import (
	"testing"

	"github.com/garagehq/ustreamer-mpp/internal/scalepolicy"
)

func TestParseScaleKnownValues(t *testing.T) {
	cases := map[string]scalepolicy.Policy{
		"native": scalepolicy.Native,
		"":       scalepolicy.Native,
		"1080p":  scalepolicy.P1080,
		"2k":     scalepolicy.P1440,
		"4k":     scalepolicy.P2160,
	}
	for in, want := range cases {
		got, err := ParseScale(in)
		if err != nil {
			t.Fatalf("ParseScale(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseScale(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseScaleRejectsUnknown(t *testing.T) {
	if _, err := ParseScale("8k"); err == nil {
		t.Fatalf("expected error for unknown scale")
	}
}

func TestParseEncoderDefaultsToMPP(t *testing.T) {
	got, err := ParseEncoder("")
	if err != nil {
		t.Fatalf("ParseEncoder(\"\"): %v", err)
	}
	if got != EncoderMPPJPEG {
		t.Fatalf("expected default mpp-jpeg, got %v", got)
	}
}

func TestParseEncoderRejectsUnknown(t *testing.T) {
	if _, err := ParseEncoder("gpu-jpeg"); err == nil {
		t.Fatalf("expected error for unknown encoder")
	}
}

func TestValidateRejectsBadQuality(t *testing.T) {
	c := Default()
	c.Quality = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero quality")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	c := Default()
	c.Workers = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}
