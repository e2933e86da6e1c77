package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModel(t *testing.T) {
	res, err := LoadModel(testModelDir)
	require.NoError(t, err)

	assert.Equal(t, "testmodel", res.Model.Name)
	assert.Equal(t, 1, res.FileCount)
	assert.Equal(t, []string{"Thing", "Employee", "Manager", "Department", "Company", "CEO"}, res.Model.ClassNames())
	assert.Equal(t, []string{"Manager", "CEO"}, res.Model.Subclasses("Employee"))
}

func TestLoadModel_Errors(t *testing.T) {
	writeDir := func(t *testing.T, files map[string]string) string {
		t.Helper()
		dir := t.TempDir()
		for name, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
		}
		return dir
	}

	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{
			name: "missing directory",
			dir:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			code: ErrCodeNotFound,
		},
		{
			name: "no cue files",
			dir:  func(t *testing.T) string { return writeDir(t, map[string]string{"README": "x"}) },
			code: ErrCodeNoFiles,
		},
		{
			name: "no model struct",
			dir: func(t *testing.T) string {
				return writeDir(t, map[string]string{"x.cue": "package x\n\nother: 1\n"})
			},
			code: ErrCodeNoModel,
		},
		{
			name: "model without classes",
			dir: func(t *testing.T) string {
				return writeDir(t, map[string]string{"x.cue": "package x\n\nmodel: name: \"empty\"\n"})
			},
			code: ErrCodeCompileFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadModel(tt.dir(t))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadValidModel_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	model := `package x

model: {
	name: "broken"
	class: Employee: {
		extends: ["Person"]
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.cue"), []byte(model), 0644))

	_, err := loadValidModel(dir)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "E104", loadErr.Code)
}
