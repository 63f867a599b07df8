package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikigraph/internal/config"
	"github.com/nao1215/wikigraph/internal/database"
	"github.com/nao1215/wikigraph/internal/persist"
)

// listDateFormat is the timestamp layout of the session table.
const listDateFormat = "2006-01-02 15:04:05"

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved networks and database sessions",
		Long: `List shows the networks saved in the data directory and the crawl sessions
stored in the database.

Examples:
  # List everything
  wikigraph list

  # Show the 20 most common categories of database session 3
  wikigraph list --session 3 --categories 20`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().String("data-dir", "",
		"Directory for saved networks and the database (default: XDG data dir)")
	cmd.Flags().Int64P("session", "s", 0,
		"Show the category histogram of this database session")
	cmd.Flags().Int("categories", config.DefaultTopCategories,
		"Number of categories shown with --session (0 = all)")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	sessionID, err := cmd.Flags().GetInt64("session")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("categories")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if sessionID > 0 {
		return listCategories(ctx, cfg, sessionID, limit, out)
	}
	return listAll(ctx, cfg, out)
}

// listAll prints saved network names and database sessions.
func listAll(ctx context.Context, cfg *config.Config, out io.Writer) error {
	names, err := persist.NewStore(cfg.NetworksDir()).List()
	if err != nil {
		return fmt.Errorf("failed to list saved networks: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintf(out, "No saved networks in %s\n", cfg.NetworksDir())
	} else {
		fmt.Fprintf(out, "Saved networks (%d):\n\n", len(names))
		for _, name := range names {
			fmt.Fprintf(out, "  • %s\n", name)
		}
	}

	dbPath := filepath.Join(cfg.DataDir, database.FileName)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintln(out, "\nNo database found")
		return nil //nolint:nilerr // A missing database is not an error for listing
	}

	db, err := database.Open(cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "\nNo sessions in the database")
		return nil
	}

	fmt.Fprintf(out, "\nDatabase sessions (%d):\n\n", len(sessions))
	fmt.Fprintf(out, "  %-6s  %-24s  %-6s  %-7s  %-8s  %-19s  %s\n",
		"ID", "Name", "Mode", "Pages", "Edges", "Started", "Status")
	fmt.Fprintf(out, "  %s\n", strings.Repeat("-", 90))
	for _, s := range sessions {
		status := "complete"
		if s.Interrupted {
			status = "interrupted"
		}
		fmt.Fprintf(out, "  %-6d  %-24s  %-6s  %-7d  %-8d  %-19s  %s\n",
			s.ID,
			truncateName(s.Name, 24),
			s.Mode,
			s.Pages,
			s.Edges,
			s.StartedAt.Local().Format(listDateFormat),
			status,
		)
	}
	return nil
}

// listCategories prints the category histogram of one session.
func listCategories(ctx context.Context, cfg *config.Config, id int64, limit int, out io.Writer) error {
	db, err := database.Open(cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rec, err := db.GetSession(ctx, id)
	if err != nil {
		return err
	}
	counts, err := db.CategoryCounts(ctx, id, limit)
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	fmt.Fprintf(out, "Session %d: %s (%s, %d pages)\n\n", rec.ID, rec.Name, rec.Mode, rec.Pages)
	if len(counts) == 0 {
		fmt.Fprintln(out, "  No categories")
		return nil
	}
	fmt.Fprintf(out, "  %-7s  %s\n", "Pages", "Category")
	for _, c := range counts {
		fmt.Fprintf(out, "  %-7d  %s\n", c.Pages, c.Category)
	}
	return nil
}

// truncateName shortens name to maxLen runes.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-3]) + "..."
}
