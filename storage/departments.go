package storage

import (
	"strings"

	"github.com/clinic-thoughts/models"
	"golang.org/x/text/cases"
)

// departmentSet is a clinic's ordered department list with a case-folded
// index. Stored names keep their original casing.
type departmentSet struct {
	names []string
	index map[string]int
}

func newDepartmentSet(names []string) *departmentSet {
	set := &departmentSet{
		names: append([]string(nil), names...),
	}
	set.reindex()
	return set
}

func foldKey(name string) string {
	return cases.Fold().String(name)
}

func (s *departmentSet) reindex() {
	s.index = make(map[string]int, len(s.names))
	for i, name := range s.names {
		key := foldKey(name)
		if _, ok := s.index[key]; !ok {
			s.index[key] = i
		}
	}
}

func (s *departmentSet) lookup(name string) (int, bool) {
	i, ok := s.index[foldKey(name)]
	return i, ok
}

func (s *departmentSet) add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyDepartmentName
	}
	if _, ok := s.lookup(name); ok {
		return ErrDepartmentExists
	}
	s.names = append(s.names, name)
	s.index[foldKey(name)] = len(s.names) - 1
	return nil
}

// rename replaces oldName in place and returns the exact stored name it
// replaced together with the new stored name.
func (s *departmentSet) rename(oldName, newName string) (previous, current string, err error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return "", "", ErrEmptyDepartmentName
	}
	i, ok := s.lookup(oldName)
	if !ok {
		return "", "", ErrDepartmentNotFound
	}
	if j, taken := s.lookup(newName); taken && j != i {
		return "", "", ErrDepartmentExists
	}
	previous = s.names[i]
	s.names[i] = newName
	s.reindex()
	return previous, newName, nil
}

// remove drops name and returns the exact stored name removed plus the
// department its thoughts fall back to.
func (s *departmentSet) remove(name string) (removed, fallback string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrEmptyDepartmentName
	}
	i, ok := s.lookup(name)
	if !ok {
		return "", "", ErrDepartmentNotFound
	}
	if len(s.names) <= 1 {
		return "", "", ErrLastDepartment
	}
	removed = s.names[i]
	s.names = append(s.names[:i], s.names[i+1:]...)
	s.reindex()

	fallback = models.DefaultDepartment
	if len(s.names) > 0 {
		fallback = s.names[0]
	}
	return removed, fallback, nil
}

func (s *departmentSet) list() []string {
	return append([]string(nil), s.names...)
}

// ResolveDepartment matches name against a clinic's department list
// case-insensitively and returns the stored spelling
func ResolveDepartment(departments []string, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyDepartmentName
	}
	i, ok := newDepartmentSet(departments).lookup(name)
	if !ok {
		return "", ErrDepartmentNotFound
	}
	return departments[i], nil
}

// listOrDefault never returns an empty list
func listOrDefault(names []string) []string {
	if len(names) == 0 {
		return []string{models.DefaultDepartment}
	}
	return append([]string(nil), names...)
}

// normalizeDepartments trims, drops blanks and case-insensitive duplicates,
// and falls back to the default list when nothing remains
func normalizeDepartments(names []string) []string {
	set := newDepartmentSet(nil)
	for _, name := range names {
		// Blanks and duplicates are skipped
		_ = set.add(name)
	}
	if len(set.names) == 0 {
		return append([]string(nil), models.DefaultDepartments...)
	}
	return set.list()
}
