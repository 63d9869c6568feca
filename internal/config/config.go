// Package config is the small typed Config struct populated before anything
// else starts, grounded on adam-eques-camera-pipeline-sender's
// internal/config — that repo loads from the environment via godotenv; this
// daemon has no environment-file equivalent, so the same "populate then
// validate" shape is filled from CLI flags instead, assembled by
// cmd/ustreamerd/main.go via the standard flag package.
package config

import (
	"fmt"

	"github.com/garagehq/ustreamer-mpp/internal/scalepolicy"
)

// EncoderKind selects which Encoder implementation backs each pool worker.
type EncoderKind string

const (
	EncoderMPPJPEG EncoderKind = "mpp-jpeg"
	EncoderCPUJPEG EncoderKind = "cpu-jpeg"
)

// Config is every flag spec §2 names, already parsed and validated.
type Config struct {
	Encoder     EncoderKind
	EncodeScale scalepolicy.Policy
	Quality     int
	Workers     int
	Listen      string
	FontBold    string
	FontMono    string
}

// Default mirrors the original daemon's startup defaults: one mpp-jpeg
// worker at native scale and quality 80, control surface on :8080.
func Default() Config {
	return Config{
		Encoder:     EncoderMPPJPEG,
		EncodeScale: scalepolicy.Native,
		Quality:     80,
		Workers:     1,
		Listen:      ":8080",
	}
}

// ParseScale maps the CLI's --encode-scale values onto scalepolicy.Policy.
func ParseScale(s string) (scalepolicy.Policy, error) {
	switch s {
	case "native", "":
		return scalepolicy.Native, nil
	case "1080p":
		return scalepolicy.P1080, nil
	case "2k":
		return scalepolicy.P1440, nil
	case "4k":
		return scalepolicy.P2160, nil
	default:
		return 0, fmt.Errorf("config: unknown encode-scale %q (want native, 1080p, 2k, or 4k)", s)
	}
}

// ParseEncoder validates the CLI's --encoder value.
func ParseEncoder(s string) (EncoderKind, error) {
	switch EncoderKind(s) {
	case EncoderMPPJPEG, EncoderCPUJPEG, "":
		if s == "" {
			return EncoderMPPJPEG, nil
		}
		return EncoderKind(s), nil
	default:
		return "", fmt.Errorf("config: unknown encoder %q (want mpp-jpeg or cpu-jpeg)", s)
	}
}

// Validate rejects out-of-range values before any singleton or goroutine is
// started, matching the validate-before-start shape of
// References/orion-prototipe/internal/config.Validate.
func (c Config) Validate() error {
	if c.Quality < 1 || c.Quality > 99 {
		return fmt.Errorf("config: quality %d out of range [1,99]", c.Quality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1")
	}
	if c.Listen == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	switch c.Encoder {
	case EncoderMPPJPEG, EncoderCPUJPEG:
	default:
		return fmt.Errorf("config: unknown encoder %q", c.Encoder)
	}
	return nil
}
