/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Stability is the ordinal rank of a version suffix. Higher is more stable,
// except for StabilityPatch which sorts above a plain release.
type Stability int

const (
	StabilityDev Stability = iota
	StabilityAlpha
	StabilityBeta
	StabilityRC
	StabilityStable
	StabilityPatch
)

func (s Stability) String() string {
	switch s {
	case StabilityDev:
		return "dev"
	case StabilityAlpha:
		return "alpha"
	case StabilityBeta:
		return "beta"
	case StabilityRC:
		return "RC"
	case StabilityPatch:
		return "patch"
	default:
		return "stable"
	}
}

// StabilityOf derives the stability of a package from its version text by
// looking for the usual substrings.
func StabilityOf(version string) Stability {
	v := strings.ToLower(version)
	switch {
	case strings.Contains(v, "dev"):
		return StabilityDev
	case strings.Contains(v, "alpha"):
		return StabilityAlpha
	case strings.Contains(v, "beta"):
		return StabilityBeta
	case strings.Contains(v, "rc"):
		return StabilityRC
	default:
		return StabilityStable
	}
}

// branchWildcard is the value given to "x" segments of numeric branches
// such as 1.0.x-dev.
const branchWildcard = 9999999

// ErrInvalidVersion is returned when a version string cannot be normalized.
var ErrInvalidVersion = errors.New("invalid version string")

// Version is a normalized package version: four numeric segments plus a
// stability modifier, or an opaque branch name (dev-<name>) that only
// matches itself.
type Version struct {
	raw       string
	branch    string
	segments  [4]uint64
	stability Stability
	modifier  []uint64
}

var (
	classicalVersionRe = regexp.MustCompile(`^v?(\d+)(\.\d+)?(\.\d+)?(\.\d+)?` +
		`[._-]?(?:(stable|beta|b|rc|alpha|a|patch|pl|p)((?:[.-]?\d+)*))?([.-]?dev)?$`)
	numericBranchRe = regexp.MustCompile(`^v?(\d+)(\.(?:\d+|[x*]))?(\.(?:\d+|[x*]))?(\.(?:\d+|[x*]))?$`)
	devSuffixRe     = regexp.MustCompile(`^(.*?)[.-]?dev$`)
	namedBranches   = map[string]bool{"master": true, "trunk": true, "default": true}
)

// ParseVersion normalizes a version string. Up to four numeric segments are
// accepted, with glued modifiers (1.0RC1) and numeric branches (1.0.x-dev).
func ParseVersion(s string) (Version, error) {
	raw := s
	v := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(v, " as "); i > 0 {
		v = strings.TrimSpace(v[:i])
	}
	if v == "" {
		return Version{}, errors.Wrap(ErrInvalidVersion, "empty version")
	}

	if strings.HasPrefix(v, "dev-") {
		if i := strings.Index(v, "#"); i > 0 {
			v = v[:i]
		}
		return Version{raw: raw, branch: v, stability: StabilityDev}, nil
	}
	if namedBranches[v] {
		return Version{raw: raw, branch: "dev-" + v, stability: StabilityDev}, nil
	}
	if i := strings.Index(v, "+"); i > 0 {
		v = v[:i]
	}

	if m := classicalVersionRe.FindStringSubmatch(v); m != nil {
		version := Version{raw: raw, stability: StabilityStable}
		for i := 0; i < 4; i++ {
			version.segments[i] = parseSegment(m[i+1])
		}
		if m[5] != "" {
			version.stability = modifierStability(m[5])
			version.modifier = parseModifierNumbers(m[6])
		}
		if m[7] != "" {
			version.stability = StabilityDev
		}
		return version, nil
	}

	if m := devSuffixRe.FindStringSubmatch(v); m != nil {
		if b := numericBranchRe.FindStringSubmatch(m[1]); b != nil {
			version := Version{raw: raw, stability: StabilityDev}
			for i := 0; i < 4; i++ {
				part := strings.TrimPrefix(b[i+1], ".")
				if part == "" || part == "x" || part == "*" {
					version.segments[i] = branchWildcard
					continue
				}
				version.segments[i] = parseSegment(part)
			}
			return version, nil
		}
	}

	return Version{}, errors.Wrapf(ErrInvalidVersion, "%q", raw)
}

// MustParseVersion is like ParseVersion but panics on malformed input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseSegment(s string) uint64 {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseModifierNumbers(s string) []uint64 {
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '-' })
	nums := make([]uint64, 0, len(fields))
	for _, f := range fields {
		nums = append(nums, parseSegment(f))
	}
	return nums
}

func modifierStability(m string) Stability {
	switch m {
	case "alpha", "a":
		return StabilityAlpha
	case "beta", "b":
		return StabilityBeta
	case "rc":
		return StabilityRC
	case "patch", "pl", "p":
		return StabilityPatch
	case "dev":
		return StabilityDev
	default:
		return StabilityStable
	}
}

// IsBranch reports whether v is an identity-only dev-<name> version.
func (v Version) IsBranch() bool {
	return v.branch != ""
}

// Stability returns the stability rank of v.
func (v Version) Stability() Stability {
	return v.stability
}

// Segments returns the four numeric segments. Branches return zeros.
func (v Version) Segments() [4]uint64 {
	return v.segments
}

// Original returns the text v was parsed from.
func (v Version) Original() string {
	if v.raw == "" {
		return v.String()
	}
	return v.raw
}

// String returns the normalized form, e.g. 1.2.0.0-beta2 or dev-main.
func (v Version) String() string {
	if v.branch != "" {
		return v.branch
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d.%d", v.segments[0], v.segments[1], v.segments[2], v.segments[3])
	if v.stability != StabilityStable {
		sb.WriteString("-")
		sb.WriteString(strings.ToLower(v.stability.String()))
		for i, n := range v.modifier {
			if i > 0 {
				sb.WriteString(".")
			}
			sb.WriteString(strconv.FormatUint(n, 10))
		}
	}
	return sb.String()
}

func (v Version) withStability(s Stability) Version {
	v.stability = s
	v.modifier = nil
	return v
}
