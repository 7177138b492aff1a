package hdt

import "github.com/KonradHoeffner/hdt/internal/dict"

// Role identifies which ID space a term occupies (spec.md §3).
type Role int

// The three term roles.
const (
	Subject Role = iota
	Predicate
	Object
)

func (r Role) String() string {
	switch r {
	case Subject:
		return "subject"
	case Predicate:
		return "predicate"
	case Object:
		return "object"
	default:
		return "unknown role"
	}
}

func (r Role) toDict() dict.Role {
	switch r {
	case Predicate:
		return dict.RolePredicate
	case Object:
		return dict.RoleObject
	default:
		return dict.RoleSubject
	}
}
