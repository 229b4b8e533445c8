// Package access holds the single source of truth for deciding what a
// practitioner may do with a patient's shared record. Evaluation is a pure
// function over values the caller already resolved; it performs no I/O and
// always judges delegation validity against the supplied "today", never
// against state captured at grant time.
package access

import "time"

// Level is the standing an actor holds on a patient file.
type Level int

const (
	// LevelNone grants nothing.
	LevelNone Level = iota
	// LevelDelegate is granted by an unexpired delegation.
	LevelDelegate
	// LevelOwner is the patient's referring practitioner.
	LevelOwner
)

func (l Level) String() string {
	switch l {
	case LevelOwner:
		return "owner"
	case LevelDelegate:
		return "delegate"
	default:
		return "none"
	}
}

// Authorized reports whether the level allows reading the record and
// creating new entries. Owner and Delegate are equally authorized here;
// only Owner may manage delegations, which callers enforce separately.
func (l Level) Authorized() bool {
	return l == LevelOwner || l == LevelDelegate
}

// Grant is the delegation subset the policy needs.
type Grant struct {
	PractitionerID string
	ValidUntil     time.Time
}

// Evaluate returns the actor's standing on a patient file owned by
// referringID, given every delegation on that file. A grant whose
// ValidUntil falls on today still counts: expiry is inclusive of the last
// day, compared at day granularity.
func Evaluate(actorID, referringID string, grants []Grant, today time.Time) Level {
	if actorID == "" {
		return LevelNone
	}
	if actorID == referringID {
		return LevelOwner
	}
	day := Day(today)
	for _, g := range grants {
		if g.PractitionerID == actorID && !Day(g.ValidUntil).Before(day) {
			return LevelDelegate
		}
	}
	return LevelNone
}

// CanMutate reports whether the actor may update or delete an existing
// entry authored by authorID. Authorship alone is not enough: an author
// whose delegation lapsed loses edit rights on their own entries.
func CanMutate(actorID, authorID string, l Level) bool {
	return actorID == authorID && l.Authorized()
}

// Day collapses an instant to its calendar day, taken from the instant's
// own location and renormalized to UTC midnight. Every date comparison in
// the system goes through this so a server clock in any zone agrees with
// the UTC dates the boundary parses.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
