package dict

import (
	"bufio"
	"fmt"
	"io"

	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

// Role identifies which ID space a term occupies.
type Role int

// Recognized roles (spec.md §3, §4.5).
const (
	RoleSubject Role = iota
	RolePredicate
	RoleObject
)

// ErrIDOutOfRange is returned by TermOf when id falls outside the role's ID
// space.
var ErrIDOutOfRange = wireerr.ErrIDOutOfRange

// Dictionary composes the four front-coded sections (SHARED, SUBJECTS,
// OBJECTS, PREDICATES) into the global subject/predicate/object ID spaces
// of spec.md §3 and §4.5.
type Dictionary struct {
	Shared     *Section
	Subjects   *Section // subject-only terms, i.e. SO_S
	Objects    *Section // object-only terms, i.e. SO_O
	Predicates *Section
}

// NumShared returns the number of terms shared between the subject and
// object roles.
func (d *Dictionary) NumShared() int { return d.Shared.NumStrings() }

// NumSubjects returns the total number of distinct subjects, shared
// terms included.
func (d *Dictionary) NumSubjects() int { return d.Shared.NumStrings() + d.Subjects.NumStrings() }

// NumObjects returns the total number of distinct objects, shared terms
// included.
func (d *Dictionary) NumObjects() int { return d.Shared.NumStrings() + d.Objects.NumStrings() }

// NumPredicates returns the total number of distinct predicates.
func (d *Dictionary) NumPredicates() int { return d.Predicates.NumStrings() }

// IDOf resolves term to its global id in the given role, or 0 if absent.
func (d *Dictionary) IDOf(term []byte, role Role) (int, error) {
	switch role {
	case RolePredicate:
		return d.Predicates.Locate(term)
	case RoleSubject:
		if id, err := d.Shared.Locate(term); err != nil {
			return 0, err
		} else if id != 0 {
			return id, nil
		}
		id, err := d.Subjects.Locate(term)
		if err != nil || id == 0 {
			return 0, err
		}
		return d.NumShared() + id, nil
	case RoleObject:
		if id, err := d.Shared.Locate(term); err != nil {
			return 0, err
		} else if id != 0 {
			return id, nil
		}
		id, err := d.Objects.Locate(term)
		if err != nil || id == 0 {
			return 0, err
		}
		return d.NumShared() + id, nil
	default:
		return 0, fmt.Errorf("dict: unknown role %d", role)
	}
}

// TermOf resolves a global id in the given role back to its term bytes.
func (d *Dictionary) TermOf(id int, role Role) ([]byte, error) {
	if id < 1 {
		return nil, ErrIDOutOfRange
	}
	switch role {
	case RolePredicate:
		return d.Predicates.Extract(id)
	case RoleSubject:
		if id <= d.NumShared() {
			return d.Shared.Extract(id)
		}
		return d.Subjects.Extract(id - d.NumShared())
	case RoleObject:
		if id <= d.NumShared() {
			return d.Shared.Extract(id)
		}
		return d.Objects.Extract(id - d.NumShared())
	default:
		return nil, fmt.Errorf("dict: unknown role %d", role)
	}
}

// Parse reads the four front-coded sections in fixed order: SHARED,
// SUBJECTS, OBJECTS, PREDICATES (spec.md §4.5).
func Parse(r *bufio.Reader) (*Dictionary, error) {
	shared, err := parseSection(r, "shared")
	if err != nil {
		return nil, err
	}
	subjects, err := parseSection(r, "subjects")
	if err != nil {
		return nil, err
	}
	objects, err := parseSection(r, "objects")
	if err != nil {
		return nil, err
	}
	predicates, err := parseSection(r, "predicates")
	if err != nil {
		return nil, err
	}
	return &Dictionary{Shared: shared, Subjects: subjects, Objects: objects, Predicates: predicates}, nil
}

// Serialize writes the four sections in the fixed SHARED, SUBJECTS,
// OBJECTS, PREDICATES order.
func (d *Dictionary) Serialize(w io.Writer) error {
	for _, s := range []*Section{d.Shared, d.Subjects, d.Objects, d.Predicates} {
		if err := s.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func parseSection(r *bufio.Reader, name string) (*Section, error) {
	s, err := ParseSection(r)
	if err != nil {
		return nil, fmt.Errorf("dict: %s section: %w", name, err)
	}
	return s, nil
}
