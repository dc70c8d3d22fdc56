package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"leadhunt-engine/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:       "run [leads|jobs|all]",
	Short:     "Run a workflow once and print the reports",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"leads", "jobs", "all"},
	RunE:      runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	workflow := "all"
	if len(args) == 1 {
		workflow = args[0]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reps, err := a.orch.Run(ctx, workflow)
	printReports(reps)
	if err != nil {
		return err
	}
	a.prune(ctx)
	return nil
}

func printReports(reps []pipeline.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "WORKFLOW\tFETCHED\tQUALIFIED\tREJECTED\tADDED\tUPDATED\tSKIPPED\tFAILED\tDURATION")
	for _, r := range reps {
		if r.RunID == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Workflow, r.Fetched, r.Qualified, r.Rejected,
			r.Added, r.Updated, r.Skipped, r.Failed,
			r.Finished.Sub(r.Started).Round(1e6),
		)
	}
	_ = w.Flush()
}
