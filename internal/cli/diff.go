package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/diffcore/internal/diff"
	"github.com/roach88/diffcore/internal/engine"
	"github.com/roach88/diffcore/internal/history"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	ConfigPath string
	Edge       bool
	Record     bool
	HistoryDB  string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(root *RootOptions) *cobra.Command {
	opts := &DiffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <left.json> <right.json>",
		Short: "Diff two JSON documents",
		Long: `Diff runs the full engine pipeline over two JSON files and prints
one line per changed leaf. Exit status is 0 whether or not changes
were found; parse and I/O failures exit non-zero.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, root, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML file overriding engine limits")
	cmd.Flags().BoolVar(&opts.Edge, "edge", false, "use the edge (low-memory) limit profile")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record this run in the history database")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "diffcore-history.db", "history database path")

	return cmd
}

func runDiff(cmd *cobra.Command, root *RootOptions, opts *DiffOptions, leftPath, rightPath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	leftDoc, err := os.ReadFile(leftPath)
	if err != nil {
		return fmt.Errorf("read left input: %w", err)
	}
	rightDoc, err := os.ReadFile(rightPath)
	if err != nil {
		return fmt.Errorf("read right input: %w", err)
	}

	eng, err := engine.New(cfg, engine.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := runPipeline(eng, leftDoc, rightDoc, leftPath, rightPath)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	report.RunID = uuid.NewString()

	if opts.Record {
		if err := recordRun(cmd, opts, report, leftDoc, rightDoc, elapsed); err != nil {
			return err
		}
	}

	return writeReport(cmd.OutOrStdout(), root.Format, report)
}

// runPipeline stages both documents and walks the mandatory call
// order: commit left, commit right, finalize, resolve symbols.
func runPipeline(eng *engine.Engine, leftDoc, rightDoc []byte, leftPath, rightPath string) (*Report, error) {
	copy(eng.LeftInput(), leftDoc)
	if st := eng.CommitLeft(uint32(len(leftDoc))); !st.IsOK() {
		return nil, commitError(eng, leftPath)
	}
	copy(eng.RightInput(), rightDoc)
	if st := eng.CommitRight(uint32(len(rightDoc))); !st.IsOK() {
		return nil, commitError(eng, rightPath)
	}
	if eng.Finalize() == nil {
		return nil, eng.Err()
	}

	paths, err := engine.DecodeSymbols(eng.BatchResolveSymbols())
	if err != nil {
		return nil, err
	}

	report := &Report{
		Left:    leftPath,
		Right:   rightPath,
		Entries: make([]Entry, 0, len(eng.Entries())),
	}
	for i, e := range eng.Entries() {
		report.Entries = append(report.Entries, Entry{
			Op:    e.Op.String(),
			Path:  paths[i],
			Left:  string(eng.LeftSpan(e)),
			Right: string(eng.RightSpan(e)),
		})
		switch e.Op {
		case diff.Added:
			report.Added++
		case diff.Removed:
			report.Removed++
		case diff.Modified:
			report.Modified++
		}
	}
	return report, nil
}

// commitError decorates a failed commit with the offending file and,
// for capacity failures, the knob that fixes them.
func commitError(eng *engine.Engine, path string) error {
	err := eng.Err()
	if engine.IsInputLimitError(err) {
		return fmt.Errorf("%s: %w; raise max_input_size", path, err)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// loadConfig layers the profile and the optional YAML override file.
func loadConfig(opts *DiffOptions) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if opts.Edge {
		cfg = engine.EdgeConfig()
	}
	if opts.ConfigPath != "" {
		raw, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return engine.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return engine.Config{}, fmt.Errorf("parse config %s: %w", opts.ConfigPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

func recordRun(cmd *cobra.Command, opts *DiffOptions, report *Report, leftDoc, rightDoc []byte, elapsed time.Duration) error {
	store, err := history.Open(opts.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(cmd.Context(), history.Run{
		ID:         report.RunID,
		CreatedAt:  time.Now(),
		LeftPath:   report.Left,
		RightPath:  report.Right,
		LeftBytes:  int64(len(leftDoc)),
		RightBytes: int64(len(rightDoc)),
		Entries:    int64(len(report.Entries)),
		Added:      int64(report.Added),
		Removed:    int64(report.Removed),
		Modified:   int64(report.Modified),
		Duration:   elapsed,
	})
}
