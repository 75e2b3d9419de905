package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress and recent queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		caseID, _ := cmd.Flags().GetString("case")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		sum, err := progress.NewTracker(cases.Default(), st.CompletionRepo()).Summary(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		fmt.Printf("Cases solved: %d of %d\n", sum.Solved, sum.Total)
		fmt.Printf("XP:           %d of %d\n", sum.XP, sum.MaxXP)
		if sum.NextUnsolved != "" {
			fmt.Printf("Next case:    %s\n", sum.NextUnsolved)
		}

		events, err := st.EventRepo().RecentQueries(ctx, store.QueryOpts{Limit: limit, CaseID: caseID})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("\nNo queries recorded yet.")
			return nil
		}

		fmt.Println()
		fmt.Printf("%-19s  %-20s  %-7s  %-9s  %6s  %s\n", "Timestamp", "Case", "Kind", "Outcome", "Ms", "SQL")
		fmt.Println(strings.Repeat("─", 100))
		for _, e := range events {
			sql := strings.Join(strings.Fields(e.SQL), " ")
			fmt.Printf("%-19s  %-20s  %-7s  %-9s  %6d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.CaseID, 20), e.Kind, e.Outcome, e.DurationMs, truncate(sql, 40))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 20, "Number of recent queries to show")
	statsCmd.Flags().StringP("case", "c", "", "Only show queries for this case")
}
