package mdbook

import (
	"errors"
	"fmt"

	"github.com/blang/semver/v4"
)

// SupportedVersions is the range of mdbook releases whose render context and
// configuration overrides this renderer understands.
const SupportedVersions = ">=0.4.0 <0.6.0"

var ErrUnsupportedVersion = errors.New("unsupported mdbook version")

var supportedRange = semver.MustParseRange(SupportedVersions)

// CheckVersion validates the version string mdbook put in the render context.
func CheckVersion(s string) error {
	v, err := ParseVersion(s)
	if err != nil {
		return err
	}
	// pre-releases of a supported minor are fine
	v.Pre = nil
	if !supportedRange(v) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedVersion, s, SupportedVersions)
	}
	return nil
}
