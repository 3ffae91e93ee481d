package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shelfcheck/backend/internal/app"
	"github.com/shelfcheck/backend/internal/domain"
	"github.com/shelfcheck/backend/internal/infrastructure/amazon"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var title, author string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a book title against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			return resolveAndPrint(cmd, ctx, &domain.PageInfo{Title: title, Author: author})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Product title as shown on the page")
	cmd.Flags().StringVarP(&author, "author", "a", "", "Author name")

	return cmd
}

func newPageCommand(ctx *commandContext) *cobra.Command {
	var parseOnly bool

	cmd := &cobra.Command{
		Use:   "page <file|url>",
		Short: "Extract title and author from a product page and resolve them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source := args[0]
			var html []byte
			if isURL(source) {
				fetcher := amazon.NewFetcher(cfg.Catalog.UserAgent, cfg.Catalog.Timeout)
				html, err = fetcher.Fetch(cmd.Context(), source)
			} else {
				html, err = os.ReadFile(source)
			}
			if err != nil {
				return fmt.Errorf("read page: %w", err)
			}

			page, err := amazon.NewParser().Parse(html)
			if err != nil {
				return err
			}
			if isURL(source) {
				page.URL = source
			}

			if parseOnly {
				return printPage(cmd, ctx, page)
			}
			return resolveAndPrint(cmd, ctx, page)
		},
	}

	cmd.Flags().BoolVar(&parseOnly, "parse-only", false, "Print the extracted fields without querying the catalog")

	return cmd
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func resolveAndPrint(cmd *cobra.Command, ctx *commandContext, page *domain.PageInfo) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	pipeline := app.New(cfg)
	defer closeLogged(pipeline, "lookup pipeline")

	notification, err := pipeline.Lookup.Resolve(cmd.Context(), page)
	if err != nil {
		return err
	}

	if ctx.wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd, notification)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderNotification(notification))
	return err
}

// closeLogged closes c and logs a failure instead of dropping it
func closeLogged(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("component", name).Msg("close failed")
	}
}

func printPage(cmd *cobra.Command, ctx *commandContext, page *domain.PageInfo) error {
	if ctx.wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd, page)
	}
	rows := [][]string{
		{"Title", page.Title},
		{"Author", page.Author},
	}
	if page.URL != "" {
		rows = append(rows, []string{"URL", page.URL})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
	return err
}
