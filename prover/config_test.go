package prover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cottand/assay/formula"
	"github.com/cottand/assay/frontend/types"
	"github.com/cottand/assay/heap"
	"github.com/cottand/assay/proof"
	"github.com/cottand/assay/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	testCases := []struct {
		name     string
		yaml     string
		expected Config
		err      string
	}{
		{
			name:     "empty keeps defaults",
			yaml:     "",
			expected: DefaultConfig(),
		},
		{
			name: "partial",
			yaml: "maxSteps: 100\ndisabledRules: [QuantifierInstantiation]\n",
			expected: Config{
				MaxSteps:          100,
				MaxInstantiations: 500,
				MaxSplitDepth:     64,
				Parallelism:       4,
				DisabledRules:     []string{"QuantifierInstantiation"},
			},
		},
		{
			name: "unbounded",
			yaml: "maxSteps: 0\nmaxInstantiations: 0\nmaxSplitDepth: 0\nparallelism: 1\n",
			expected: Config{
				Parallelism: 1,
			},
		},
		{name: "negative limit", yaml: "maxSteps: -1\n", err: "invalid config"},
		{name: "no parallelism", yaml: "parallelism: 0\n", err: "parallelism must be at least 1"},
		{name: "malformed", yaml: "maxSteps: [\n", err: "decode config"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			if tc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxSplitDepth: 3\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSplitDepth)
	assert.Equal(t, DefaultConfig().MaxSteps, cfg.MaxSteps)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")

	require.NoError(t, os.WriteFile(path, []byte("parallelism: -2\n"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestNewFiltersDisabledRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledRules = []string{"OrElimination", "AndElimination"}
	linear, nonLinear := testRules()
	p := New(cfg, linear, nonLinear)
	for _, r := range p.linear {
		assert.NotEqual(t, "AndElimination", r.Name())
	}
	assert.Len(t, p.linear, len(linear)-1)
	assert.Empty(t, p.nonLinear)
}

func testRules() ([]proof.LinearRule, []proof.NonLinearRule) {
	decls := types.NewDeclarations()
	alg := formula.New(heap.New())
	return rules.Default(&rules.Env{
		Translator: formula.NewTranslator(alg, decls),
		Oracle:     types.NewOracle(decls),
	})
}
