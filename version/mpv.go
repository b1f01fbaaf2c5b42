package version

import (
	"errors"
	"fmt"
	"regexp"
)

// MinMPV is the oldest mpv exposing the current-tracks properties the observer relies on.
const MinMPV = "0.33.0"

var ErrUnsupportedPlayer = errors.New("unsupported player version")

var mpvVersion = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// ParseMPV extracts x.y.z from an mpv-version string such as "mpv v0.36.0-dirty".
func ParseMPV(raw string) (string, error) {
	match := mpvVersion.FindStringSubmatch(raw)
	if match == nil {
		return "", fmt.Errorf("parse %q: %w", raw, ErrUnsupportedPlayer)
	}

	return match[1], nil
}

// CheckMPV fails for builds older than MinMPV. Git builds without a release number pass.
func CheckMPV(raw string) error {
	parsed, err := ParseMPV(raw)
	if err != nil {
		return nil
	}

	cmp, err := Compare(parsed, MinMPV)
	if err != nil {
		return err
	}

	if cmp < 0 {
		return fmt.Errorf("mpv %s is older than %s: %w", parsed, MinMPV, ErrUnsupportedPlayer)
	}

	return nil
}
