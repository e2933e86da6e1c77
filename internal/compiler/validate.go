package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/precompute/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrEmptyModel            = "E100" // model declares no classes
	ErrInvalidName           = "E101" // class or field name is not an identifier
	ErrDuplicateClass        = "E102" // class declared twice
	ErrDuplicateField        = "E103" // field declared twice on a class
	ErrUnknownSuperclass     = "E104" // extends names an undeclared class
	ErrUnknownRelationTarget = "E105" // reference/collection targets an undeclared class
	ErrInheritanceCycle      = "E106" // class is its own ancestor
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// identPattern keeps names free of whitespace and of the '+' wildcard marker.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateModel validates a compiled model.
// Returns all errors found (does not fail-fast).
func ValidateModel(m *ir.Model) []ValidationError {
	var errs []ValidationError

	if len(m.Classes) == 0 {
		return []ValidationError{{
			Field:   "class",
			Message: "model declares no classes",
			Code:    ErrEmptyModel,
		}}
	}

	seenClasses := make(map[string]bool)
	for i, cld := range m.Classes {
		path := fmt.Sprintf("class[%d]", i)

		if !identPattern.MatchString(cld.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("invalid class name %q", cld.Name),
				Code:    ErrInvalidName,
			})
		}
		if seenClasses[cld.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate class name: %q", cld.Name),
				Code:    ErrDuplicateClass,
			})
		}
		seenClasses[cld.Name] = true

		for _, sup := range cld.Extends {
			if !m.HasClass(sup) {
				errs = append(errs, ValidationError{
					Field:   path + ".extends",
					Message: fmt.Sprintf("class %q extends unknown class %q", cld.Name, sup),
					Code:    ErrUnknownSuperclass,
				})
			}
		}

		seenFields := make(map[string]bool)
		for j, fd := range cld.Fields {
			fieldPath := fmt.Sprintf("%s.fields[%d]", path, j)

			if !identPattern.MatchString(fd.Name) {
				errs = append(errs, ValidationError{
					Field:   fieldPath,
					Message: fmt.Sprintf("invalid field name %q on %q", fd.Name, cld.Name),
					Code:    ErrInvalidName,
				})
			}
			if seenFields[fd.Name] {
				errs = append(errs, ValidationError{
					Field:   fieldPath,
					Message: fmt.Sprintf("duplicate field %q on %q", fd.Name, cld.Name),
					Code:    ErrDuplicateField,
				})
			}
			seenFields[fd.Name] = true

			if fd.IsRelation() && !m.HasClass(fd.Type) {
				errs = append(errs, ValidationError{
					Field:   fieldPath,
					Message: fmt.Sprintf("%s %s.%s targets unknown class %q", fd.Kind, cld.Name, fd.Name, fd.Type),
					Code:    ErrUnknownRelationTarget,
				})
			}
		}

		if inheritsFrom(m, cld.Name, cld.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".extends",
				Message: fmt.Sprintf("class %q is its own ancestor", cld.Name),
				Code:    ErrInheritanceCycle,
			})
		}
	}

	return errs
}

// inheritsFrom reports whether ancestor is reachable from class through
// extends edges, walking at least one edge.
func inheritsFrom(m *ir.Model, class, ancestor string) bool {
	seen := make(map[string]bool)
	var walk func(string) bool
	walk = func(name string) bool {
		cld, ok := m.Class(name)
		if !ok {
			return false
		}
		for _, sup := range cld.Extends {
			if sup == ancestor {
				return true
			}
			if seen[sup] {
				continue
			}
			seen[sup] = true
			if walk(sup) {
				return true
			}
		}
		return false
	}
	return walk(class)
}
