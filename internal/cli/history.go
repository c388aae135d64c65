package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/diffcore/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	HistoryDB string
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded diff runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "diffcore-history.db", "history database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")

	return cmd
}

func runHistory(cmd *cobra.Command, root *RootOptions, opts *HistoryOptions) error {
	store, err := history.Open(opts.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if root.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s -> %s  +%d -%d ~%d  (%s)\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.ID,
			r.LeftPath, r.RightPath,
			r.Added, r.Removed, r.Modified,
			r.Duration)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no recorded runs")
	}
	return nil
}
