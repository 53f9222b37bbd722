// Package session holds the user-defined pitches of one dashboard session.
package session

import "github.com/verte-zerg/pitchmap/internal/model"

// State is the coarse state of a pitch list.
type State int

const (
	// Empty means no pitches have been added since creation or the last reset.
	Empty State = iota
	// NonEmpty means at least one pitch is present.
	NonEmpty
)

func (s State) String() string {
	if s == NonEmpty {
		return "non-empty"
	}
	return "empty"
}

// PitchList is an ordered collection of user pitches. The zero value is an
// empty list ready to use. It is owned by the caller and is not safe for
// concurrent use.
type PitchList struct {
	pitches []model.UserPitch
}

// New returns an empty pitch list.
func New() *PitchList {
	return &PitchList{}
}

// Add appends a pitch. Identical pitches are kept as separate entries.
func (l *PitchList) Add(p model.UserPitch) {
	if p.ArmAngle != nil {
		angle := *p.ArmAngle
		p.ArmAngle = &angle
	}
	l.pitches = append(l.pitches, p)
}

// Reset removes every pitch.
func (l *PitchList) Reset() {
	l.pitches = nil
}

// Len returns the number of pitches.
func (l *PitchList) Len() int {
	return len(l.pitches)
}

// State reports whether the list is empty.
func (l *PitchList) State() State {
	if len(l.pitches) == 0 {
		return Empty
	}
	return NonEmpty
}

// Pitches returns a copy of the pitches in insertion order.
func (l *PitchList) Pitches() []model.UserPitch {
	return append([]model.UserPitch(nil), l.pitches...)
}

// PitchTypes returns the distinct pitch types in first-seen order.
func (l *PitchList) PitchTypes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range l.pitches {
		if _, ok := seen[p.PitchType]; ok {
			continue
		}
		seen[p.PitchType] = struct{}{}
		out = append(out, p.PitchType)
	}
	return out
}

// GroupByPitchType groups pitches by type, keeping insertion order within
// each group. Use PitchTypes for a deterministic key order.
func (l *PitchList) GroupByPitchType() map[string][]model.UserPitch {
	groups := make(map[string][]model.UserPitch)
	for _, p := range l.pitches {
		groups[p.PitchType] = append(groups[p.PitchType], p)
	}
	return groups
}
