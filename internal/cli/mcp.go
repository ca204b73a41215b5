package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/bryanwahyu/deepscan/internal/infra/mcp"
)

func newMCPCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running deepscan as an MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(d))
	return cmd
}

func newMCPServeCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the deepscan MCP server (stdio)",
		Long:  "Start the MCP server on stdio so coding assistants can request code analyses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := d.build(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()
			return server.ServeStdio(mcpadapter.NewServer(app.Service, version))
		},
	}
}
