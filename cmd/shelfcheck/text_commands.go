package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfcheck/backend/internal/usecase"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "normalize <text>...",
		Short:       "Print the comparison key of each argument",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			type normalized struct {
				Input string `json:"input"`
				Key   string `json:"key"`
			}
			results := make([]normalized, 0, len(args))
			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				key := usecase.Normalize(arg)
				results = append(results, normalized{Input: arg, Key: key})
				rows = append(rows, []string{arg, key})
			}

			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, results)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Input", "Key"}, rows, nil))
			return err
		},
	}
}

func newReduceCommand(ctx *commandContext) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:         "reduce <title>",
		Short:       "Show the cleaned and simple titles and the planned queries",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			preprocessor := usecase.NewQueryPreprocessor()
			title := preprocessor.Reduce(strings.Join(args, " "))
			queries := preprocessor.BuildQueries(title, strings.TrimSpace(author))

			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, map[string]any{
					"title":   title,
					"queries": queries,
				})
			}

			rows := [][]string{
				{"cleaned", title.Cleaned},
				{"simple", title.Simple},
			}
			for _, q := range queries {
				rows = append(rows, []string{string(q.Kind), q.Keyword})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Form", "Text"}, rows, nil))
			return err
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Author used for the first query")

	return cmd
}

func newSimilarityCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:         "similarity <a> <b>",
		Short:       "Score two titles the way catalog candidates are scored",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			matcher := usecase.NewMatchingService(usecase.MatchConfig{SimilarityThreshold: threshold})
			score := usecase.Similarity(args[0], args[1])
			accepted := matcher.Accepts(score)

			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, map[string]any{
					"a":         args[0],
					"b":         args[1],
					"score":     score,
					"threshold": matcher.Threshold(),
					"accepted":  accepted,
				})
			}

			rows := [][]string{
				{"Key A", usecase.Normalize(args[0])},
				{"Key B", usecase.Normalize(args[1])},
				{"Score", formatScore(score)},
				{"Threshold", formatScore(matcher.Threshold())},
				{"Accepted", fmt.Sprint(accepted)},
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return err
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", usecase.DefaultSimilarityThreshold, "Acceptance threshold")

	return cmd
}
