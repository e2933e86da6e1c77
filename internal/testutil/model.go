package testutil

import "github.com/roach88/precompute/internal/ir"

// SampleModel returns a small company model used across package tests.
//
//	Thing
//	├── Employee (department -> Department)
//	│   └── Manager
//	│       └── CEO (company -> Company)
//	├── Department (employees ->> Employee, company -> Company)
//	└── Company (departments ->> Department)
func SampleModel() *ir.Model {
	return ir.NewModel("testmodel", []ir.ClassDescriptor{
		{Name: "Thing", Fields: []ir.FieldDescriptor{
			{Name: "name", Kind: ir.FieldAttribute, Type: "string"},
		}},
		{Name: "Employee", Extends: []string{"Thing"}, Fields: []ir.FieldDescriptor{
			{Name: "age", Kind: ir.FieldAttribute, Type: "int"},
			{Name: "department", Kind: ir.FieldReference, Type: "Department"},
		}},
		{Name: "Manager", Extends: []string{"Employee"}},
		{Name: "Department", Extends: []string{"Thing"}, Fields: []ir.FieldDescriptor{
			{Name: "employees", Kind: ir.FieldCollection, Type: "Employee"},
			{Name: "company", Kind: ir.FieldReference, Type: "Company"},
		}},
		{Name: "Company", Extends: []string{"Thing"}, Fields: []ir.FieldDescriptor{
			{Name: "departments", Kind: ir.FieldCollection, Type: "Department"},
		}},
		{Name: "CEO", Extends: []string{"Manager"}, Fields: []ir.FieldDescriptor{
			{Name: "company", Kind: ir.FieldReference, Type: "Company"},
		}},
	})
}
