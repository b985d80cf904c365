package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	"github.com/starford/quill/internal/mcpserver"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run an MCP server over stdio",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			svc, _, err := internal.OpenService(cfg, logger)
			if err != nil {
				return err
			}
			return mcpserver.New(svc, version).ServeStdio()
		},
	}
}
