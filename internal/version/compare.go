package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/stockview/pkg/errors"
)

// DevelopmentVersion marks builds and configs that skip the check.
const DevelopmentVersion = "main"

// CheckConfigCompatibility reports whether a config file written for
// configVersion can be loaded by a binary at binaryVersion.
//
// Rules:
//   - "main" on either side skips the check
//   - major versions must match
//   - the config may not need a newer minor than the binary provides
//   - patch versions are ignored
//
// Examples:
//   - binary 1.2.0, config 1.0 -> OK
//   - binary 1.2.0, config 1.3 -> ERROR (config needs a newer binary)
//   - binary 2.0.0, config 1.0 -> ERROR (major differs)
func CheckConfigCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(strings.TrimSpace(binaryVersion), "v")
	configVersion = strings.TrimPrefix(strings.TrimSpace(configVersion), "v")

	if binaryVersion == DevelopmentVersion || configVersion == DevelopmentVersion {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid binary version '%s'", binaryVersion)
	}

	config, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if binary.Major() != config.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"major version mismatch: binary is %d.x.x but config is written for %d.x.x",
			binary.Major(), config.Major())
	}

	if config.Minor() > binary.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"config requires %d.%d.x or newer but binary is %s",
			config.Major(), config.Minor(), binary.String())
	}

	return nil
}
