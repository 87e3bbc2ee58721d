package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/er2view/internal/loader"
	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleData = `{
	"Solid": {
		"Basic": [
			{"id": "lead", "absorption": 0.2, "heatEfficiency": 0.3, "moderation": 1.0, "heatConductivity": "IHeatEntity.CONDUCTIVITY_IRON"},
			{"id": "iron", "absorption": "0.5", "heatEfficiency": 0.4, "moderation": 1.1, "heatConductivity": "IHeatEntity.CONDUCTIVITY_IRON"}
		],
		"Thermal": [
			{"id": "graphite", "absorption": "N/A", "heatEfficiency": 0.5, "moderation": 2.0, "heatConductivity": 1.5}
		]
	},
	"Fluid": {
		"Basic": [
			{"id": "water", "absorption": 0.1, "heatEfficiency": 0.6, "moderation": 1.33, "heatConductivity": "IHeatEntity.CONDUCTIVITY_WATER"}
		]
	}
}`

func writeData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reactor_moderator_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleData), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	root := NewRootCommand(BuildInfo{Version: "dev", Commit: "none", Date: "unknown"})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPrint_FilterAndSort(t *testing.T) {
	path := writeData(t)

	out, logs, err := run(t, "print", path, "--mod", "Basic", "--sort", "absorption")
	require.NoError(t, err)

	assert.Contains(t, out, "Heat Conductivity")
	assert.NotContains(t, out, "graphite")

	iron := strings.Index(out, "iron")
	lead := strings.Index(out, "lead")
	water := strings.Index(out, "water")
	require.True(t, iron >= 0 && lead >= 0 && water >= 0)
	assert.Less(t, iron, lead)
	assert.Less(t, lead, water)

	assert.Contains(t, logs, "data loaded")
}

func TestPrint_AllRows(t *testing.T) {
	out, _, err := run(t, "print", writeData(t), "--log-level", "error")
	require.NoError(t, err)

	for _, id := range []string{"lead", "iron", "graphite", "water"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, moderator.MissingText)
}

func TestExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "view.csv")

	stdout, _, err := run(t, "export", writeData(t), "-o", out, "--mod", "Thermal")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Solid,Thermal,graphite,,0.5,2,1.5")
}

func TestStartupErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Solid": `), 0o644))

	_, _, err := run(t, "print", filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, loader.ErrNotFound), "got %v", err)

	_, _, err = run(t, "print", bad)
	var perr *loader.ParseError
	assert.True(t, errors.As(err, &perr), "got %v", err)

	_, _, err = run(t, "print", writeData(t), "--sort", "density")
	assert.True(t, errors.Is(err, moderator.ErrUnknownField), "got %v", err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "er2view dev")
	assert.Contains(t, out, "commit: none")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]moderator.Moderator{{
		Type:             types.KindSolid,
		Mod:              "Basic",
		ID:               "lead",
		Absorption:       moderator.Num(0.2),
		HeatEfficiency:   moderator.Num(0.3),
		Moderation:       moderator.Num(1),
		HeatConductivity: moderator.Num(0.6),
	}})

	for _, h := range moderator.Headers() {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "lead")
	assert.Contains(t, out, "0.6")
}
