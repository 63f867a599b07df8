package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikigraph/internal/log"
)

// NewRootCmd creates the root command for wikigraph.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikigraph",
		Short: "Crawl the Wikipedia link graph and summarize its communities",
		Long: `wikigraph builds a directed graph of Wikipedia pages by following links
outward from one or more seed pages through the MediaWiki API.

Each page records its outgoing links and categories. Redirects collapse onto
their target page, and disambiguation pages fan out to their options. After the
crawl an inner pass re-explores the collected pages and keeps only the links
between them. Both networks are saved under the data directory.

Given a community partition of the pages, the bags command reports the
categories shared inside each community.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewBagsCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getGlobalBool retrieves a boolean flag from the command or the root's
// persistent flags. Missing flags read as false.
func getGlobalBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// setupLogger creates the secure logger used by every command.
func setupLogger(verbose, jsonFormat bool) *slog.Logger {
	return log.New(os.Stderr, verbose, jsonFormat)
}
