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
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidConstraint is returned for constraint text that cannot be parsed.
var ErrInvalidConstraint = errors.New("invalid constraint string")

var (
	orSplitRe       = regexp.MustCompile(`\s*\|\|?\s*`)
	andSplitRe      = regexp.MustCompile(`\s*,\s*|\s+`)
	operatorSpaceRe = regexp.MustCompile(`(<>|!=|>=|<=|==|=|<|>|~|\^)\s+`)
	hyphenRangeRe   = regexp.MustCompile(`^(\S+)\s+-\s+(\S+)$`)
	aliasRe         = regexp.MustCompile(`^(\S+)\s+as\s+\S+$`)
	stabilityFlagRe = regexp.MustCompile(`@(stable|rc|beta|alpha|dev)$`)
	comparatorRe    = regexp.MustCompile(`^(<>|!=|>=?|<=?|==?)?\s*(.+)$`)
	numericPrefixRe = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?`)
)

// ParseConstraints parses a constraint expression such as ">=1.0 <2.0",
// "^1.2 || ~2.3.1" or "dev-main". An empty expression matches everything.
func ParseConstraints(s string) (Constraint, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return MatchAll{}, nil
	}

	var disjuncts []Constraint
	for _, or := range orSplitRe.Split(text, -1) {
		or = strings.TrimSpace(or)
		if or == "" {
			return nil, errors.Wrapf(ErrInvalidConstraint, "%q: empty alternative", s)
		}
		c, err := parseConjunction(or)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", s)
		}
		disjuncts = append(disjuncts, c)
	}
	return NewMulti(disjuncts, false), nil
}

// MustParseConstraints is like ParseConstraints but panics on malformed input.
func MustParseConstraints(s string) Constraint {
	c, err := ParseConstraints(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseConjunction(text string) (Constraint, error) {
	if m := aliasRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if m := hyphenRangeRe.FindStringSubmatch(text); m != nil {
		return parseHyphenRange(m[1], m[2])
	}

	text = operatorSpaceRe.ReplaceAllString(text, "$1")
	var conjuncts []Constraint
	for _, part := range andSplitRe.Split(text, -1) {
		if part == "" {
			continue
		}
		cs, err := parseConstraint(part)
		if err != nil {
			return nil, err
		}
		conjuncts = append(conjuncts, cs...)
	}
	if len(conjuncts) == 0 {
		return nil, errors.Wrap(ErrInvalidConstraint, "empty constraint")
	}
	return NewMulti(conjuncts, true), nil
}

// parseConstraint expands one token into the constraints it stands for. Range
// operators yield a lower and an upper bound.
func parseConstraint(text string) ([]Constraint, error) {
	text = stabilityFlagRe.ReplaceAllString(text, "")
	if strings.HasPrefix(text, "dev-") {
		if i := strings.Index(text, "#"); i > 0 {
			text = text[:i]
		}
	}

	switch text {
	case "*", "x", "v*", "":
		return []Constraint{MatchAll{}}, nil
	}

	switch {
	case strings.HasPrefix(text, "^"):
		return parseCaret(text[1:])
	case strings.HasPrefix(text, "~>"):
		return parseTilde(text[2:])
	case strings.HasPrefix(text, "~"):
		return parseTilde(text[1:])
	}

	if cs, ok, err := parseWildcard(text); ok || err != nil {
		return cs, err
	}

	m := comparatorRe.FindStringSubmatch(text)
	if m == nil {
		return nil, errors.Wrapf(ErrInvalidConstraint, "%q", text)
	}
	op, _ := parseOperator(m[1])
	v, err := ParseVersion(m[2])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConstraint, "%q", text)
	}
	if (op == OpLess || op == OpGreaterEqual) && !v.IsBranch() && !hasExplicitStability(m[2]) {
		v = v.withStability(StabilityDev)
	}
	return []Constraint{NewSingle(op, v)}, nil
}

// hasExplicitStability reports whether a modifier follows the numeric part.
func hasExplicitStability(text string) bool {
	rest := numericPrefixRe.ReplaceAllString(text, "")
	if i := strings.Index(rest, "+"); i >= 0 {
		rest = rest[:i]
	}
	return rest != ""
}

// lowerVersion parses the lower end of a range, admitting pre-releases of
// that version unless a stability was spelled out.
func lowerVersion(text string) (Version, error) {
	v, err := ParseVersion(text)
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidConstraint, "%q", text)
	}
	if !v.IsBranch() && !hasExplicitStability(text) {
		v = v.withStability(StabilityDev)
	}
	return v, nil
}

// givenParts returns how many leading numeric segments text spells out.
func givenParts(text string) int {
	m := numericPrefixRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n := 1
	for _, part := range m[2:] {
		if part == "" {
			break
		}
		n++
	}
	return n
}

// bump increments segment position (1-based) and zeroes the following ones.
// The result is a dev version so that pre-releases of the next version stay
// out of a "<" bound.
func bump(v Version, position int) Version {
	out := Version{stability: StabilityDev}
	for i := 0; i < 4; i++ {
		switch {
		case i < position-1:
			out.segments[i] = v.segments[i]
		case i == position-1:
			out.segments[i] = v.segments[i] + 1
		}
	}
	return out
}

func parseCaret(text string) ([]Constraint, error) {
	low, err := lowerVersion(text)
	if err != nil || low.IsBranch() {
		return nil, errors.Wrapf(ErrInvalidConstraint, "^%s", text)
	}
	parts := givenParts(text)
	position := 3
	switch {
	case low.segments[0] != 0 || parts < 2:
		position = 1
	case low.segments[1] != 0 || parts < 3:
		position = 2
	}
	return []Constraint{
		NewSingle(OpGreaterEqual, low),
		NewSingle(OpLess, bump(low, position)),
	}, nil
}

func parseTilde(text string) ([]Constraint, error) {
	low, err := lowerVersion(text)
	if err != nil || low.IsBranch() {
		return nil, errors.Wrapf(ErrInvalidConstraint, "~%s", text)
	}
	position := givenParts(text) - 1
	if position < 1 {
		position = 1
	}
	return []Constraint{
		NewSingle(OpGreaterEqual, low),
		NewSingle(OpLess, bump(low, position)),
	}, nil
}

// parseWildcard handles 1.*, 1.2.x and friends. ok is false when text has no
// wildcard segment.
func parseWildcard(text string) ([]Constraint, bool, error) {
	segments := strings.Split(strings.TrimPrefix(text, "v"), ".")
	position := -1
	for i, seg := range segments {
		if seg == "*" || seg == "x" {
			position = i
			break
		}
	}
	if position < 1 {
		return nil, false, nil
	}
	for _, seg := range segments[position:] {
		if seg != "*" && seg != "x" {
			return nil, true, errors.Wrapf(ErrInvalidConstraint, "%q", text)
		}
	}
	base, err := ParseVersion(strings.Join(segments[:position], "."))
	if err != nil || base.stability != StabilityStable {
		return nil, true, errors.Wrapf(ErrInvalidConstraint, "%q", text)
	}
	low := base.withStability(StabilityDev)
	high := bump(base, position)
	if low.segments == [4]uint64{} {
		return []Constraint{NewSingle(OpLess, high)}, true, nil
	}
	return []Constraint{NewSingle(OpGreaterEqual, low), NewSingle(OpLess, high)}, true, nil
}

func parseHyphenRange(from, to string) (Constraint, error) {
	low, err := lowerVersion(from)
	if err != nil || low.IsBranch() {
		return nil, errors.Wrapf(ErrInvalidConstraint, "%s - %s", from, to)
	}
	high, err := ParseVersion(to)
	if err != nil || high.IsBranch() {
		return nil, errors.Wrapf(ErrInvalidConstraint, "%s - %s", from, to)
	}
	var upper *Single
	parts := givenParts(to)
	if parts >= 3 || hasExplicitStability(to) {
		upper = NewSingle(OpLessEqual, high)
	} else {
		upper = NewSingle(OpLess, bump(high, parts))
	}
	return NewMulti([]Constraint{NewSingle(OpGreaterEqual, low), upper}, true), nil
}
