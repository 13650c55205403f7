package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/mcptools"
	"github.com/csheth/vibewrite/internal/suggest"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the revision tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		closer, err := openLogFile(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, err := buildEngine(cfg, suggest.UUIDs{})
		if err != nil {
			return err
		}

		drafter, err := llm.NewDrafter(cfg.LLM())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		svc := mcptools.NewRevisionService(engine, cfg.Options()).WithDrafter(drafter)
		server := mcptools.NewRevisionMCPServer(svc, version)
		return mcptools.RunStdio(ctx, server)
	},
}
