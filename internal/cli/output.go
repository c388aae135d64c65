package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

// Entry is one resolved diff line.
type Entry struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// Report is the full outcome of one diff run.
type Report struct {
	RunID    string  `json:"run_id"`
	Left     string  `json:"left"`
	Right    string  `json:"right"`
	Added    int     `json:"added"`
	Removed  int     `json:"removed"`
	Modified int     `json:"modified"`
	Entries  []Entry `json:"entries"`
}

// opSigils maps ops to their text-mode prefix.
var opSigils = map[string]string{
	"added":    "+",
	"removed":  "-",
	"modified": "~",
}

// writeReport renders a report in the selected format.
func writeReport(w io.Writer, format string, report *Report) error {
	switch format {
	case "json":
		raw, err := json.Marshal(report)
		if err != nil {
			return err
		}
		_, err = w.Write(pretty.Pretty(raw))
		return err
	default:
		return writeTextReport(w, report)
	}
}

func writeTextReport(w io.Writer, report *Report) error {
	for _, e := range report.Entries {
		var line string
		switch e.Op {
		case "added":
			line = fmt.Sprintf("+ %s: %s", e.Path, e.Right)
		case "removed":
			line = fmt.Sprintf("- %s: %s", e.Path, e.Left)
		default:
			line = fmt.Sprintf("%s %s: %s -> %s", opSigils[e.Op], e.Path, e.Left, e.Right)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d added, %d removed, %d modified\n",
		report.Added, report.Removed, report.Modified)
	return err
}
