package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
)

func compileString(t *testing.T, src string) (*ir.Model, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileModel(v.LookupPath(cue.ParsePath("model")))
}

func TestCompileModelBasic(t *testing.T) {
	m, err := compileString(t, `
		model: {
			name: "testmodel"
			class: Thing: {
				attribute: { name: string }
			}
			class: Employee: {
				extends: ["Thing"]
				attribute: { age: int, fullTime: bool, salary: float }
				reference: { department: "Department" }
			}
			class: Department: {
				extends: ["Thing"]
				collection: { employees: "Employee" }
			}
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, "testmodel", m.Name)
	assert.Equal(t, []string{"Thing", "Employee", "Department"}, m.ClassNames())

	emp, ok := m.Class("Employee")
	require.True(t, ok)
	assert.Equal(t, []string{"Thing"}, emp.Extends)
	assert.Equal(t, []ir.FieldDescriptor{
		{Name: "age", Kind: ir.FieldAttribute, Type: "int"},
		{Name: "fullTime", Kind: ir.FieldAttribute, Type: "bool"},
		{Name: "salary", Kind: ir.FieldAttribute, Type: "float"},
		{Name: "department", Kind: ir.FieldReference, Type: "Department"},
	}, emp.Fields)

	fd, ok := m.Field("Department", "employees")
	require.True(t, ok)
	assert.True(t, fd.IsCollection())
}

func TestCompileModelNameFromLabel(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		models: genomic: {
			class: Gene: {}
		}
	`)
	require.NoError(t, v.Err())

	m, err := CompileModel(v.LookupPath(cue.ParsePath("models.genomic")))
	require.NoError(t, err)
	assert.Equal(t, "genomic", m.Name)
}

func TestCompileModelMissingClasses(t *testing.T) {
	_, err := compileString(t, `model: { name: "empty" }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class")
}

func TestCompileModelRelationMustNameClass(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			class: Employee: {
				reference: { department: int }
			}
		}
	`)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "reference", compileErr.Field)
	assert.Contains(t, compileErr.Message, "department")
}

func TestCompileModelUnsupportedAttributeKind(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			class: Employee: {
				attribute: { tags: [...string] }
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported attribute kind")
}

func TestCompileErrorFormatting(t *testing.T) {
	err := &CompileError{Field: "class", Message: "boom"}
	assert.Equal(t, "class: boom", err.Error())
}
