package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenariosAgainstGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		s, err := LoadScenario(file)
		require.NoError(t, err)
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestRunResolvesEntries(t *testing.T) {
	s := &Scenario{
		Name:  "inline",
		Left:  `{"a":1,"b":{"c":"x"}}`,
		Right: `{"a":1,"b":{"c":"y"},"d":true}`,
	}
	result, err := Run(s)
	require.NoError(t, err)
	require.Equal(t, []ResolvedEntry{
		{Op: "modified", Path: "$.b.c", Left: "x", Right: "y"},
		{Op: "added", Path: "$.d", Right: "true"},
	}, result.Entries)
}

func TestCheckAssertions(t *testing.T) {
	s := &Scenario{
		Name:  "check",
		Left:  `{"a":1}`,
		Right: `{"a":2}`,
	}
	result, err := Run(s)
	require.NoError(t, err)

	t.Run("passing", func(t *testing.T) {
		s.Assertions = []Assertion{
			{Type: AssertEntryCount, Count: 1},
			{Type: AssertEntry, Op: "modified", Path: "$.a"},
		}
		require.NoError(t, result.Check(s))
	})

	t.Run("wrong count", func(t *testing.T) {
		s.Assertions = []Assertion{{Type: AssertEntryCount, Count: 5}}
		require.Error(t, result.Check(s))
	})

	t.Run("missing entry", func(t *testing.T) {
		s.Assertions = []Assertion{{Type: AssertEntry, Op: "added", Path: "$.a"}}
		require.Error(t, result.Check(s))
	})

	t.Run("value mismatch", func(t *testing.T) {
		s.Assertions = []Assertion{{Type: AssertEntry, Op: "modified", Path: "$.a", Left: "999"}}
		require.Error(t, result.Check(s))
	})

	t.Run("unknown type", func(t *testing.T) {
		s.Assertions = []Assertion{{Type: "bogus"}}
		require.Error(t, result.Check(s))
	})
}

func TestRunReportsParseFailure(t *testing.T) {
	s := &Scenario{
		Name:  "broken",
		Left:  `{"a":"unterminated`,
		Right: `{}`,
	}
	_, err := Run(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "commit left")
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "does-not-exist.yaml"))
	require.Error(t, err)
}
