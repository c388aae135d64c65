package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/diffcore/internal/engine"
)

// Scenario defines one conformance case: two documents and the
// assertions their diff must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Left and Right are the two JSON documents, inline.
	Left  string `yaml:"left"`
	Right string `yaml:"right"`

	// Assertions validate the resolved entries. Supported types:
	// entry, entry_count.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates the resolved diff.
type Assertion struct {
	// Type selects the assertion: "entry" checks that an entry with
	// the given op/path (and optionally left/right values) exists;
	// "entry_count" checks the total number of entries.
	Type string `yaml:"type"`

	// Op and Path select the expected entry (entry).
	Op   string `yaml:"op,omitempty"`
	Path string `yaml:"path,omitempty"`

	// Left and Right, when non-empty, must match the resolved spans
	// byte-for-byte (entry).
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	// Count is the expected entry total (entry_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEntry      = "entry"
	AssertEntryCount = "entry_count"
)

// ResolvedEntry is a diff entry with its path string and value spans
// resolved, the way a host presents it.
type ResolvedEntry struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// Result holds the resolved outcome of one scenario run.
type Result struct {
	Scenario string          `json:"scenario"`
	Entries  []ResolvedEntry `json:"entries"`
}

// harnessConfig sizes the engine for inline scenario documents.
func harnessConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.MaxInputSize = 2 * 1024 * 1024
	cfg.MaxMemoryBytes = 4 * 1024 * 1024
	return cfg
}

// LoadScenario reads one scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("load scenario %s: missing name", path)
	}
	return &s, nil
}

// Run drives the full pipeline for one scenario and resolves every
// entry against the symbol frame and the input spans.
func Run(s *Scenario) (*Result, error) {
	eng, err := engine.New(harnessConfig())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	n := copy(eng.LeftInput(), s.Left)
	if st := eng.CommitLeft(uint32(n)); !st.IsOK() {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, eng.Err())
	}
	n = copy(eng.RightInput(), s.Right)
	if st := eng.CommitRight(uint32(n)); !st.IsOK() {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, eng.Err())
	}
	if frame := eng.Finalize(); frame == nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, eng.Err())
	}

	paths, err := engine.DecodeSymbols(eng.BatchResolveSymbols())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	entries := eng.Entries()
	resolved := make([]ResolvedEntry, 0, len(entries))
	for i, e := range entries {
		resolved = append(resolved, ResolvedEntry{
			Op:    e.Op.String(),
			Path:  paths[i],
			Left:  string(eng.LeftSpan(e)),
			Right: string(eng.RightSpan(e)),
		})
	}

	return &Result{Scenario: s.Name, Entries: resolved}, nil
}

// Check validates the scenario's assertions against a result.
func (r *Result) Check(s *Scenario) error {
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertEntry:
			if !r.containsEntry(a) {
				return fmt.Errorf("scenario %s: assertion %d: no %s entry at %s",
					s.Name, i, a.Op, a.Path)
			}
		case AssertEntryCount:
			if len(r.Entries) != a.Count {
				return fmt.Errorf("scenario %s: assertion %d: %d entries, want %d",
					s.Name, i, len(r.Entries), a.Count)
			}
		default:
			return fmt.Errorf("scenario %s: assertion %d: unknown type %q", s.Name, i, a.Type)
		}
	}
	return nil
}

func (r *Result) containsEntry(a Assertion) bool {
	for _, e := range r.Entries {
		if e.Op != a.Op || e.Path != a.Path {
			continue
		}
		if a.Left != "" && e.Left != a.Left {
			continue
		}
		if a.Right != "" && e.Right != a.Right {
			continue
		}
		return true
	}
	return false
}
