package cli

import (
	"encoding/json"
	"fmt"

	"github.com/promisetracker/linkwatch/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how fresh the last successful validation is",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := a.newScheduler()
			if err != nil {
				return err
			}
			view := sched.Status()

			if jsonOutput {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderStatus(view))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")

	return cmd
}
