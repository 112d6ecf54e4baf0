package cli

import (
	mcpadapter "github.com/promisetracker/linkwatch/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the linkwatch MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var schedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start linkwatch MCP server (stdio)",
		Long:  "Start the linkwatch MCP server using stdio transport. Assistants can run validations, read status and the latest report, and check single sources.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := a.newScheduler()
			if err != nil {
				return err
			}
			if schedule {
				sched.Start(cmd.Context())
				defer sched.Stop()
			}

			s := mcpadapter.NewLinkwatchMCPServer(sched, version)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().BoolVar(&schedule, "schedule", false, "Also run the validation scheduler in the background")

	return cmd
}
