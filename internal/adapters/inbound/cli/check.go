package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/promisetracker/linkwatch/internal/adapters/outbound/tui"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <source-id>",
		Short: "Check a single source link now",
		Long:  "Check one source by id without running a full validation. Nothing is persisted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid source id %q", args[0])
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			check, err := a.service.ValidateSource(cmd.Context(), id)
			if errors.Is(err, domain.ErrSourceNotFound) {
				return fmt.Errorf("source %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("checking source %d: %w", id, err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(check, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling check: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSingleCheck(check))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the check as JSON")

	return cmd
}
