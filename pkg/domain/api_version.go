package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// APIVersion represents a valid API version string.
// This is a domain primitive that enforces validity at parse time.
type APIVersion string

// Supported API versions.
const (
	APIVersion10 APIVersion = "1.0"
	APIVersion11 APIVersion = "1.1"
	APIVersion20 APIVersion = "2.0"
)

var knownVersions = map[APIVersion]struct{}{
	APIVersion10: {},
	APIVersion11: {},
	APIVersion20: {},
}

// pathVersion matches a version path segment such as "v2" or "v1.1".
var pathVersion = regexp.MustCompile(`^v(\d+(?:\.\d+)?)$`)

// ParseAPIVersion validates and returns an APIVersion.
// Returns an error if the version is unknown.
func ParseAPIVersion(s string) (APIVersion, error) {
	v := APIVersion(s)
	if _, ok := knownVersions[v]; !ok {
		return "", fmt.Errorf("unknown API version: %s", s)
	}
	return v, nil
}

// VersionFromPathSegment extracts the raw version from a "v<digits[.digits]>"
// segment. The result is not checked against SupportedVersions: "v1" yields
// "1", which ParseAPIVersion rejects.
func VersionFromPathSegment(segment string) (string, bool) {
	m := pathVersion.FindStringSubmatch(segment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VersionFromPath returns the first path segment naming a version.
func VersionFromPath(path string) (string, bool) {
	for _, seg := range strings.Split(path, "/") {
		if v, ok := VersionFromPathSegment(seg); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the string representation of the API version.
func (v APIVersion) String() string {
	return string(v)
}

// SupportedVersions returns all currently supported API versions.
func SupportedVersions() []APIVersion {
	return []APIVersion{APIVersion10, APIVersion11, APIVersion20}
}

// DefaultVersion is used when the request names no version.
func DefaultVersion() APIVersion {
	return APIVersion10
}
