package core

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Sierra classes before 0.1.0 were never declarable on a public network.
var minSierraVersion = semver.MustParse("0.1.0")

// ParseSierraVersion parses a contract_class_version such as "0.1.0". Missing
// minor or patch components are padded with zeros; anything after the third
// component is ignored.
func ParseSierraVersion(version string) (*semver.Version, error) {
	if version == "" {
		return nil, fmt.Errorf("empty contract class version")
	}

	sep := "."
	digits := strings.Split(version, sep)
	// pad with 3 zeros in case version has less than 3 digits
	digits = append(digits, []string{"0", "0", "0"}...)

	// get first 3 digits only
	parsed, err := semver.StrictNewVersion(strings.Join(digits[:3], sep))
	if err != nil {
		return nil, fmt.Errorf("contract class version %q: %w", version, err)
	}
	if parsed.LessThan(minSierraVersion) {
		return nil, fmt.Errorf("contract class version %q is older than %s", version, minSierraVersion)
	}
	return parsed, nil
}
