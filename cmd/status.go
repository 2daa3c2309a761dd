package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ratesmap/ratesmap/internal/ingest"
	"github.com/ratesmap/ratesmap/internal/property"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and sync history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, pool, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		count, err := store.Count(ctx)
		if err != nil {
			return eris.Wrap(err, "status: count records")
		}

		cats, err := store.Categories(ctx)
		if err != nil {
			return eris.Wrap(err, "status: list categories")
		}

		p := message.NewPrinter(language.English)
		p.Printf("Properties: %d\n\n", count)
		formatCategories(os.Stdout, p, cats)

		// Sync history only exists on the Postgres path.
		if pool == nil {
			return nil
		}

		entries, err := ingest.NewSyncLog(pool).Recent(ctx, 20)
		if err != nil {
			return eris.Wrap(err, "status: sync history")
		}
		if len(entries) == 0 {
			fmt.Println("No sync runs recorded, run 'ratesmap sync' first")
			return nil
		}

		fmt.Println()
		formatSyncEntries(os.Stdout, p, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func formatCategories(out io.Writer, p *message.Printer, cats []property.CategoryCount) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tCOUNT")
	_, _ = fmt.Fprintln(w, "--------\t-----")
	for _, c := range cats {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c.PropertyType, p.Sprintf("%d", c.Count))
	}
	_ = w.Flush()
}

// formatSyncEntries writes a tabular representation of sync runs to w.
func formatSyncEntries(out io.Writer, p *message.Printer, entries []ingest.SyncEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "------\t------\t-------\t--------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}

		errMsg := ""
		if e.Error != "" {
			errMsg = truncate(e.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Source,
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			p.Sprintf("%d", e.RowsSynced),
			errMsg,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
