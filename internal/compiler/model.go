package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/precompute/internal/ir"
)

// CompileModel parses a CUE value into a domain model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the model struct itself, e.g.:
//
//	model: {
//		name: "testmodel"
//		class: Employee: {
//			extends: ["Thing"]
//			attribute: { age: int }
//			reference: { department: "Department" }
//		}
//		class: Department: {
//			collection: { employees: "Employee" }
//		}
//	}
//
// Classes keep their declaration order, which becomes model order.
func CompileModel(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Name defaults to the struct label.
	var name string
	if labels := v.Path().Selectors(); len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		name = s
	}
	if name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "model name is required",
			Pos:     v.Pos(),
		}
	}

	classVal := v.LookupPath(cue.ParsePath("class"))
	if !classVal.Exists() {
		return nil, &CompileError{
			Field:   "class",
			Message: "at least one class is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := classVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var classes []ir.ClassDescriptor
	for iter.Next() {
		cld, err := compileClass(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		classes = append(classes, cld)
	}

	return ir.NewModel(name, classes), nil
}

// compileClass parses one class body.
func compileClass(name string, v cue.Value) (ir.ClassDescriptor, error) {
	cld := ir.ClassDescriptor{Name: name}

	extendsVal := v.LookupPath(cue.ParsePath("extends"))
	if extendsVal.Exists() {
		supers, err := parseStringList(extendsVal)
		if err != nil {
			return cld, err
		}
		cld.Extends = supers
	}

	attrs, err := parseFields(v, "attribute", ir.FieldAttribute)
	if err != nil {
		return cld, err
	}
	refs, err := parseFields(v, "reference", ir.FieldReference)
	if err != nil {
		return cld, err
	}
	colls, err := parseFields(v, "collection", ir.FieldCollection)
	if err != nil {
		return cld, err
	}

	cld.Fields = append(cld.Fields, attrs...)
	cld.Fields = append(cld.Fields, refs...)
	cld.Fields = append(cld.Fields, colls...)
	return cld, nil
}

// parseFields reads one of the attribute/reference/collection sections.
// Attributes map to a CUE type; relations map to the target class name.
func parseFields(v cue.Value, section string, kind ir.FieldKind) ([]ir.FieldDescriptor, error) {
	sectionVal := v.LookupPath(cue.ParsePath(section))
	if !sectionVal.Exists() {
		return nil, nil
	}

	iter, err := sectionVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.FieldDescriptor
	for iter.Next() {
		fd := ir.FieldDescriptor{Name: iter.Label(), Kind: kind}

		if kind == ir.FieldAttribute {
			typeName, err := extractTypeName(iter.Value())
			if err != nil {
				return nil, err
			}
			fd.Type = typeName
		} else {
			target, err := iter.Value().String()
			if err != nil {
				return nil, &CompileError{
					Field:   section,
					Message: fmt.Sprintf("%s %q must name a target class", section, iter.Label()),
					Pos:     iter.Value().Pos(),
				}
			}
			fd.Type = target
		}

		fields = append(fields, fd)
	}
	return fields, nil
}

// parseStringList reads a list of concrete strings.
func parseStringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// extractTypeName converts a CUE attribute type to a type name.
func extractTypeName(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.FloatKind, cue.NumberKind:
		return "float", nil
	default:
		return "", &CompileError{
			Field:   "attribute",
			Message: fmt.Sprintf("unsupported attribute kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
