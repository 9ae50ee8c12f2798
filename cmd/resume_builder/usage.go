package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/observability"
)

var usageCommand = &cobra.Command{
	Use:   "usage",
	Short: "Summarize model usage and cost",
	Long:  "Reads the NDJSON usage log and prints calls, tokens and cost per model. With a database configured, the persisted totals are printed too.",
	RunE:  runUsage,
}

func init() {
	usageCommand.Flags().String("usage-log", "", "NDJSON usage log (default log/llm_calls.jsonl)")
	rootCmd.AddCommand(usageCommand)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := llm.ReadUsageLog(a.cfg.UsageLog)
	if err != nil {
		return err
	}
	printer := observability.NewPrinter(a.out)
	printer.PrintUsageSummary(llm.SummarizeUsage(records))

	if a.cfg.DatabaseURL == "" {
		return nil
	}
	if err := a.connectDB(ctx); err != nil {
		return err
	}
	costs, err := a.db.CostByModel(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.out, "\nPersisted usage:")
	for _, c := range costs {
		_, _ = fmt.Fprintf(a.out, "  %-28s %6d calls %9d in %9d out  $%.6f\n", c.Model, c.Calls, c.InputTokens, c.OutputTokens, c.TotalCost)
	}
	return nil
}
