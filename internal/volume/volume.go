// Package volume defines regions of configuration space as snapshot
// predicates. State volumes and interface surfaces are both expressed
// as ranges of a collective variable, combinable with set operations.
package volume

import (
	"strings"

	"github.com/mkoven/pathmc/internal/paths"
)

// Volume is a predicate over single snapshots.
type Volume interface {
	Name() string
	Contains(*paths.Snapshot) bool
}

// CVDefined is the half-open region min <= cv(x) < max. Either bound
// may be infinite.
type CVDefined struct {
	name     string
	cv       paths.CV
	min, max float64
}

func NewCVDefined(name string, cv paths.CV, min, max float64) *CVDefined {
	return &CVDefined{name: name, cv: cv, min: min, max: max}
}

func (v *CVDefined) Name() string { return v.name }

func (v *CVDefined) Contains(s *paths.Snapshot) bool {
	x := v.cv.F(s)
	return x >= v.min && x < v.max
}

// Union is membership in any of the parts.
type Union struct {
	parts []Volume
}

func NewUnion(parts ...Volume) *Union { return &Union{parts: parts} }

func (v *Union) Name() string {
	names := make([]string, len(v.parts))
	for i, p := range v.parts {
		names[i] = p.Name()
	}
	return strings.Join(names, "|")
}

func (v *Union) Contains(s *paths.Snapshot) bool {
	for _, p := range v.parts {
		if p.Contains(s) {
			return true
		}
	}
	return false
}

// Intersect is membership in all of the parts.
type Intersect struct {
	parts []Volume
}

func NewIntersect(parts ...Volume) *Intersect { return &Intersect{parts: parts} }

func (v *Intersect) Name() string {
	names := make([]string, len(v.parts))
	for i, p := range v.parts {
		names[i] = p.Name()
	}
	return strings.Join(names, "&")
}

func (v *Intersect) Contains(s *paths.Snapshot) bool {
	for _, p := range v.parts {
		if !p.Contains(s) {
			return false
		}
	}
	return len(v.parts) > 0
}

// Complement inverts a volume.
type Complement struct {
	inner Volume
}

func NewComplement(inner Volume) *Complement { return &Complement{inner: inner} }

func (v *Complement) Name() string { return "!" + v.inner.Name() }

func (v *Complement) Contains(s *paths.Snapshot) bool {
	return !v.inner.Contains(s)
}
