package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many records the store holds",
	RunE:  runStatus,
}

var pingSearch bool

func init() {
	statusCmd.Flags().BoolVar(&pingSearch, "ping", false, "also run one live search to test the API key (uses quota)")
	rootCmd.AddCommand(statusCmd)
}

// runStatus opens the database directly; it does not need the run lock.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, dir, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(dir, "leadhunt.db"))
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	counts, err := st.Counts(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	for _, k := range []store.Kind{store.Companies, store.Leads, store.JobPostings} {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", k, counts[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if pingSearch {
		return pingProvider(context.Background(), cfg)
	}
	return nil
}

func pingProvider(ctx context.Context, cfg config.Config) error {
	sc, err := newSearch(cfg)
	if err != nil {
		return err
	}
	sc.Policy.MaxRetries = 0
	id, err := sc.Ping(ctx)
	if err != nil {
		return fmt.Errorf("search provider: %w", err)
	}
	fmt.Fprintf(os.Stdout, "search provider ok (search id %s)\n", id)
	return nil
}
