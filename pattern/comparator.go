package pattern

import (
	"cmp"
	"fmt"

	"github.com/poiesic/motif/core"
)

// Attribute names a note field that a Comparator can inspect. The names
// follow the corpus JSON keys.
type Attribute string

const (
	AttrTime     Attribute = "time"
	AttrPitch    Attribute = "pitch"
	AttrDuration Attribute = "duration"
	AttrVelocity Attribute = "velocity"
	AttrPitchStr Attribute = "pitch_str"
	AttrMeasure  Attribute = "measure"
	AttrIsGrace  Attribute = "is_grace"
)

// ParseAttribute resolves a JSON attribute name.
func ParseAttribute(name string) (Attribute, error) {
	switch a := Attribute(name); a {
	case AttrTime, AttrPitch, AttrDuration, AttrVelocity, AttrPitchStr, AttrMeasure, AttrIsGrace:
		return a, nil
	}
	return "", fmt.Errorf("unknown note attribute %q", name)
}

// Value returns the attribute of n. ok is false when the note does not
// carry the attribute or the name is unknown.
func Value(n core.Note, attr Attribute) (v any, ok bool) {
	switch attr {
	case AttrTime:
		return n.Time, true
	case AttrPitch:
		return n.Pitch, true
	case AttrDuration:
		return n.Duration, true
	case AttrVelocity:
		return n.Velocity, true
	case AttrPitchStr:
		if n.PitchStr == nil {
			return nil, false
		}
		return *n.PitchStr, true
	case AttrMeasure:
		if n.Measure == nil {
			return nil, false
		}
		return *n.Measure, true
	case AttrIsGrace:
		if n.IsGrace == nil {
			return nil, false
		}
		return *n.IsGrace, true
	}
	return nil, false
}

// Comparator decides whether two notes agree on one attribute. A note that
// lacks the attribute never agrees with anything.
type Comparator interface {
	Attribute() Attribute
	Equal(a, b core.Note) bool
}

// Policy is the ordered set of comparators applied to every note pair.
type Policy []Comparator

// Keys builds an exact-match policy over the named attributes.
func Keys(attrs ...Attribute) Policy {
	p := make(Policy, len(attrs))
	for i, a := range attrs {
		p[i] = Exact(a)
	}
	return p
}

// PitchOnly is the default policy: notes agree when their pitches are equal.
var PitchOnly = Keys(AttrPitch)

type exactComparator struct {
	attr Attribute
}

// Exact compares an attribute for strict equality.
func Exact(attr Attribute) Comparator {
	return exactComparator{attr: attr}
}

func (c exactComparator) Attribute() Attribute { return c.attr }

func (c exactComparator) Equal(a, b core.Note) bool {
	va, okA := Value(a, c.attr)
	vb, okB := Value(b, c.attr)
	if !okA || !okB {
		return false
	}
	return va == vb
}

type toleranceComparator struct {
	attr      Attribute
	tolerance int
}

// Within accepts integer attributes whose values differ by at most
// tolerance. Non-integer attributes are compared exactly.
func Within(attr Attribute, tolerance int) Comparator {
	return toleranceComparator{attr: attr, tolerance: tolerance}
}

func (c toleranceComparator) Attribute() Attribute { return c.attr }

func (c toleranceComparator) Equal(a, b core.Note) bool {
	va, okA := Value(a, c.attr)
	vb, okB := Value(b, c.attr)
	if !okA || !okB {
		return false
	}
	ia, isIntA := va.(int)
	ib, isIntB := vb.(int)
	if !isIntA || !isIntB {
		return va == vb
	}
	d := ia - ib
	if d < 0 {
		d = -d
	}
	return d <= c.tolerance
}

// compareAttr orders two notes by one attribute. Missing values sort first.
func compareAttr(a, b core.Note, attr Attribute) int {
	va, okA := Value(a, attr)
	vb, okB := Value(b, attr)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	switch x := va.(type) {
	case int:
		return cmp.Compare(x, vb.(int))
	case string:
		return cmp.Compare(x, vb.(string))
	case bool:
		y := vb.(bool)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	}
	return 0
}
