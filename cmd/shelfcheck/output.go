package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/shelfcheck/backend/internal/domain"
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}

// renderNotification shows the payload as a field table followed by the attempts
func renderNotification(n *domain.Notification) string {
	var rows [][]string
	switch {
	case n.Kind == domain.NotificationMatched && n.Matched != nil:
		m := n.Matched
		rows = [][]string{
			{"Result", "matched"},
			{"Title", m.DisplayTitle},
			{"Price", m.PriceText},
			{"Link", m.Link},
			{"Query", string(m.QueryKind) + " " + m.Keyword},
			{"Score", formatScore(m.Score)},
		}
	case n.NoMatch != nil:
		rows = [][]string{
			{"Result", "no match"},
			{"Search", n.NoMatch.SearchURL},
		}
	default:
		rows = [][]string{{"Result", string(n.Kind)}}
	}

	out := renderTable([]string{"Field", "Value"}, rows, nil)
	if len(n.Attempts) == 0 {
		return out
	}
	return out + "\n" + renderAttempts(n.Attempts)
}

func renderAttempts(attempts []domain.Attempt) string {
	rows := make([][]string, 0, len(attempts))
	for i, a := range attempts {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			string(a.Query.Kind),
			a.Query.Keyword,
			string(a.Outcome),
			formatScore(a.Score),
			a.CandidateTitle,
		})
	}
	return renderTable(
		[]string{"#", "Step", "Keyword", "Outcome", "Score", "Candidate"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
