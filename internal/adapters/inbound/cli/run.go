package cli

import (
	"encoding/json"
	"fmt"

	"github.com/promisetracker/linkwatch/internal/adapters/outbound/tui"
	"github.com/promisetracker/linkwatch/internal/application"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		noRepair      bool
		comprehensive bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate every source link now",
		Long:  "Run one validation pass: repair placeholder sources, check every URL, persist the results and archive a text report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			kind := domain.RunStandard
			if comprehensive {
				kind = domain.RunComprehensive
			}
			sched, err := a.newScheduler()
			if err != nil {
				return err
			}
			result, err := sched.Trigger(cmd.Context(), application.RunOptions{
				AutoRepair: a.cfg.AutoRepair.IsEnabled() && !noRepair,
				Kind:       kind,
			})
			if err != nil {
				return fmt.Errorf("validation not started: %w", err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunResult(result))
			}

			if !result.Succeeded() {
				return fmt.Errorf("validation failed: %s", result.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRepair, "no-repair", false, "Skip auto-repair of placeholder sources")
	cmd.Flags().BoolVar(&comprehensive, "comprehensive", false, "Add the reliability and source type audit")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run result as JSON")

	return cmd
}
