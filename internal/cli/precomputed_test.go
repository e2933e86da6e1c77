package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precompute/internal/store"
)

// precomputedStore returns a seeded store after one run at min-rows 2.
func precomputedStore(t *testing.T) string {
	t.Helper()
	dsn := seededStore(t)
	_, _, err := execute(t, newRunCommandWith(newTestRunCommand("text")),
		"--store", dsn,
		"--summary", "testdata/summary.yaml",
		"--min-rows", "2",
		testModelDir)
	require.NoError(t, err)
	return dsn
}

func TestPrecomputed(t *testing.T) {
	dsn := precomputedStore(t)

	tests := []struct {
		name  string
		runID string
		want  int
	}{
		{"all", "", 3},
		{"matching run", "run-cli", 3},
		{"other run", "run-other", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--store", dsn}
			if tt.runID != "" {
				args = append(args, "--run-id", tt.runID)
			}
			out, _, err := execute(t, NewPrecomputedCommand(&RootOptions{Format: "json"}), args...)
			require.NoError(t, err)

			var resp struct {
				Status string              `json:"status"`
				Data   []store.Precomputed `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "ok", resp.Status)
			require.Len(t, resp.Data, tt.want)
			for _, p := range resp.Data {
				assert.Equal(t, "run-cli", p.RunID)
				assert.NotEmpty(t, p.Table)
				assert.Positive(t, p.Rows)
			}
		})
	}
}

func TestPrecomputedText(t *testing.T) {
	dsn := precomputedStore(t)

	out, _, err := execute(t, NewPrecomputedCommand(&RootOptions{Format: "text"}), "--store", dsn)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines[:3] {
		assert.Contains(t, line, "run run-cli")
	}
	assert.Equal(t, "3 precomputed table(s)", lines[4])
}

func TestPrecomputedEmptyStore(t *testing.T) {
	out, _, err := execute(t, NewPrecomputedCommand(&RootOptions{Format: "text"}), "--store", tempStoreDSN(t))
	require.NoError(t, err)
	assert.Equal(t, "\n0 precomputed table(s)\n", out)
}

func TestPrecomputedRequiresStore(t *testing.T) {
	_, _, err := execute(t, NewPrecomputedCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.False(t, IsReported(err))
}

func TestPrecomputedBadDSN(t *testing.T) {
	out, _, err := execute(t, NewPrecomputedCommand(&RootOptions{Format: "json"}), "--store", "mysql://nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORE_FAILED", resp.Error.Code)
}
