package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/progress"
	"github.com/abhisek/sleuth/internal/screens"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the cases and which ones are solved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		reg := cases.Default()
		sum, err := progress.NewTracker(reg, st.CompletionRepo()).Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		fmt.Printf("%-2s  %-20s  %-32s  %-10s  %s\n", "", "ID", "Title", "Difficulty", "XP")
		fmt.Println(strings.Repeat("─", 76))
		for _, c := range reg.All() {
			mark := "·"
			if sum.Completed[c.ID] {
				mark = "✔"
			}
			fmt.Printf("%-2s  %-20s  %-32s  %-10s  %d\n",
				mark, truncate(c.ID, 20), truncate(c.Title, 32), screens.Stars(c.Difficulty), c.XPReward)
		}
		fmt.Println(strings.Repeat("─", 76))
		fmt.Printf("%d of %d solved, %d/%d XP\n", sum.Solved, sum.Total, sum.XP, sum.MaxXP)
		return nil
	},
}
