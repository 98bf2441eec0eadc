// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// SupportedVersions is the range of settings-file versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// CheckVersion verifies that a settings-file version is readable.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code(CodeConfigInvalid).
			With("field", "version").
			With("version", version).
			Wrapf(err, "version: %q is not a semantic version", version)
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Wrapf(err, "parse supported version range")
	}
	if !c.Check(v) {
		return oops.Code(CodeConfigInvalid).
			With("field", "version").
			With("version", version).
			With("supported", SupportedVersions).
			Errorf("version: %s is not supported (want %s)", version, SupportedVersions)
	}
	return nil
}
