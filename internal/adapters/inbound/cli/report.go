package cli

import (
	"encoding/json"
	"fmt"

	"github.com/promisetracker/linkwatch/internal/adapters/outbound/tui"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var textOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the latest validation result",
		Long:  "Print the persisted result of the latest validation run as JSON, or rendered for the terminal with --text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.service.LatestReport()

			if textOutput {
				if result.Status == domain.ResultNoData {
					fmt.Fprintln(cmd.OutOrStdout(), result.Message)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunResult(result))
				return nil
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&textOutput, "text", false, "Render for the terminal instead of JSON")

	return cmd
}
