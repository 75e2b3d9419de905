package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sleuth/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("sleuth", version)
		fmt.Println("protocol", api.ProtocolVersion)

		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}
		ac := cfg.APIClient()
		if err := ac.Validate(); err != nil {
			return err
		}
		h, err := api.NewClient(ac, logger).Handshake(cmd.Context())
		if h != nil {
			fmt.Printf("backend %s at %s (%s)\n", h.Version, ac.BaseURL, h.Status)
		}
		if err != nil {
			return fmt.Errorf("backend check: %s", api.UserMessage(err))
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also check the backend at --api-url is reachable and compatible")
}
