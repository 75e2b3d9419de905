package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/ui/components"
)

// errWrongAnswer makes `check` exit non-zero without a usage dump.
var errWrongAnswer = errors.New("not the answer")

var queryCmd = &cobra.Command{
	Use:   "query --case <id> <sql>",
	Short: "Run one query against a case and print the rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, args, func(b *backend, caseID, sql string) error {
			res, err := b.ExecuteSQL(cmd.Context(), sql, caseID)
			if err != nil {
				return errors.New(api.UserMessage(err))
			}
			if res.Error != "" {
				return errors.New(res.Error)
			}
			fmt.Println(components.ResultTable{Columns: res.Columns, Rows: res.Rows}.View())
			fmt.Printf("%d row(s)\n", len(res.Rows))
			if res.Correct() {
				msg := res.Message
				if msg == "" {
					msg = "Case closed."
				}
				fmt.Println("✔ " + msg)
			}
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check --case <id> <sql>",
	Short: "Check whether a query solves a case",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, args, func(b *backend, caseID, sql string) error {
			res, err := b.CheckSolution(cmd.Context(), sql, caseID)
			if err != nil {
				return errors.New(api.UserMessage(err))
			}
			if !res.IsCorrect {
				fmt.Println("✘ Not the answer yet.")
				return errWrongAnswer
			}
			fmt.Println("✔ Case closed.")
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, checkCmd} {
		c.Flags().StringP("case", "c", "", "Case ID (see `sleuth cases`)")
		_ = c.MarkFlagRequired("case")
		addLocalFlag(c)
	}
}

// runOneShot validates the case, opens a recording backend and hands the
// joined SQL to fn.
func runOneShot(cmd *cobra.Command, args []string, fn func(b *backend, caseID, sql string) error) error {
	caseID, _ := cmd.Flags().GetString("case")
	if _, err := cases.Default().Get(caseID); err != nil {
		return err
	}
	sql := strings.TrimSpace(strings.Join(args, " "))
	if sql == "" {
		return errors.New("empty query")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	b, err := openBackend(cmd, st.EventRepo(), uuid.NewString())
	if err != nil {
		return err
	}
	defer b.stop()
	return fn(b, caseID, sql)
}
