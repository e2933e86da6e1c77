package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/ir"
	"github.com/roach88/precompute/internal/store"
	"github.com/roach88/precompute/internal/testutil"
)

// seededStore returns the DSN of a store loaded with testdata/objects.yaml.
func seededStore(t *testing.T) string {
	t.Helper()
	dsn := tempStoreDSN(t)
	_, _, err := execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--store", dsn, testModelDir, "testdata/objects.yaml")
	require.NoError(t, err)
	return dsn
}

func newTestRunCommand(format string) *RunOptions {
	return &RunOptions{
		RootOptions:    &RootOptions{Format: format},
		RunIDGenerator: testutil.NewFixedRunIDGenerator("run-cli"),
		Clock:          testutil.NewStepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond),
	}
}

func TestRunMissingSettings(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantKey string
	}{
		{"no store", []string{"--summary", "s.yaml", "--min-rows", "1"}, "store"},
		{"no summary", []string{"--store", "sqlite:x.db", "--min-rows", "1"}, "summary"},
		{"no threshold", []string{"--store", "sqlite:x.db", "--summary", "s.yaml"}, "min-rows"},
		{"nothing", nil, "store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := newTestRunCommand("json")
			cmd := newRunCommandWith(opts)

			// The model directory does not exist: settings fail first.
			out, _, err := execute(t, cmd, append(tt.args, "/nonexistent/model")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.True(t, ir.IsConfigError(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "MISSING_SETTING", resp.Error.Code)
			assert.Equal(t, tt.wantKey, resp.Error.Details.(map[string]any)["key"])
		})
	}
}

func TestRunEndToEnd(t *testing.T) {
	dsn := seededStore(t)
	metricsFile := filepath.Join(t.TempDir(), "precompute.prom")

	opts := newTestRunCommand("json")
	out, _, err := execute(t, newRunCommandWith(opts),
		"--store", dsn,
		"--summary", "testdata/summary.yaml",
		"--min-rows", "2",
		"--metrics-file", metricsFile,
		testModelDir)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID    string `json:"run_id"`
			Outcomes []struct {
				Key      string `json:"key"`
				Estimate int64  `json:"estimate"`
				Admitted bool   `json:"admitted"`
			} `json:"outcomes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-cli", resp.Data.RunID)

	var admitted []bool
	for _, o := range resp.Data.Outcomes {
		admitted = append(admitted, o.Admitted)
	}
	// Employee 4, Manager 2, CEO 1, Department-Company 2
	assert.Equal(t, []bool{true, true, false, true}, admitted)

	st, err := store.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer st.Close()
	tables, err := st.Precomputed(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 3)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "precompute_materializations_total 3")
}

func TestRunTestModeText(t *testing.T) {
	dsn := seededStore(t)

	opts := newTestRunCommand("text")
	out, _, err := execute(t, newRunCommandWith(opts),
		"--store", dsn,
		"--summary", "testdata/summary.yaml",
		"--min-rows", "100",
		"--test-mode",
		testModelDir)
	require.NoError(t, err)

	assert.Contains(t, out, "Starting tests\n")
	assert.Contains(t, out, "Running tests before precomputing\n")
	assert.Contains(t, out, "  running test test.query.employees:\n")
	assert.Contains(t, out, "  got size 4 in 1ms\n")
	assert.Contains(t, out, "Running tests after all precomputes\n")
	assert.NotContains(t, out, "Running tests after precomputing ")
	assert.Contains(t, out, "run run-cli: 0 admitted, 4 skipped (min rows 100)")
}

func TestRunZeroSummaryShortCircuits(t *testing.T) {
	dsn := seededStore(t)
	summary := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, os.WriteFile(summary, []byte("classes:\n  Department: 0\n"), 0644))

	opts := newTestRunCommand("text")
	out, _, err := execute(t, newRunCommandWith(opts),
		"--store", dsn,
		"--summary", summary,
		"--min-rows", "0",
		testModelDir)
	require.NoError(t, err)

	// Every candidate involves Department, so every estimate is zero,
	// and a zero threshold still admits them.
	assert.Contains(t, out, "run run-cli: 4 admitted, 0 skipped (min rows 0)")
}

func TestRunUnknownRelationFailsBeforeStore(t *testing.T) {
	props := filepath.Join(t.TempDir(), "props.yaml")
	require.NoError(t, os.WriteFile(props, []byte("precompute.constructquery.bad: Employee bogusField Department\n"), 0644))

	// The run fails while planning, before any estimate.
	dbPath := filepath.Join(t.TempDir(), "objects.db")

	opts := newTestRunCommand("text")
	_, _, err := execute(t, newRunCommandWith(opts),
		"--store", "sqlite:"+dbPath,
		"--summary", "testdata/summary.yaml",
		"--min-rows", "1",
		"--properties", props,
		testModelDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, ir.IsModelError(err))
	assert.Equal(t, ir.ErrCodeUnknownRelation, ir.CodeOf(err))
}
