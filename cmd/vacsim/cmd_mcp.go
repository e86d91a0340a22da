package main

import (
	"fmt"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run vacsim as an MCP server over stdio",
		Long: `Serve the vacsim_sample and vacsim_forecast tools and the
vacsim://config resource to an MCP client over stdin/stdout.

Every tool call starts from the loaded configuration, and all calls share
one result cache. Tool calls are recorded in ~/.vacsim/audit.jsonl.

Example client configuration:
  {"command": "vacsim", "args": ["mcp-server"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			trace := newTrace(cfg)
			defer trace.Close()

			auditDir, _ := config.Dir()
			server, err := mcp.NewServer(&mcp.Config{
				Name:     "vacsim",
				Version:  version,
				Settings: cfg,
				AuditDir: auditDir,
				Logger:   newLogger(cmd, cfg),
				Trace:    trace,
			})
			if err != nil {
				return err
			}

			return server.Run(cmd.Context())
		},
	}
}
