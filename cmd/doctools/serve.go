package main

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-doctools/internal/config"
	"github.com/alnah/go-doctools/internal/server"
)

func newServeCmd(env *Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over MCP",
		Long: `Serve the four tools to an agent host over the Model Context Protocol.

The stdio transport reads requests from stdin and writes responses to stdout;
logs go to stderr. The http transport serves the streamable HTTP endpoint at
/mcp and a health check at /healthz.`,
		Example: `  doctools serve
  doctools serve --transport http --addr 127.0.0.1:8080`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, env)
		},
	}
	cmd.Flags().String("transport", "", "transport: stdio or http (default from config)")
	cmd.Flags().String("addr", "", "listen address for the http transport")
	return cmd
}

func runServe(cmd *cobra.Command, env *Environment) error {
	cfg := env.Config
	if v, _ := cmd.Flags().GetString("transport"); v != "" {
		cfg.Server.Transport = v
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tk, err := newToolkit(env)
	if err != nil {
		return err
	}
	defer closeToolkit(env, tk)

	srv := server.New(cfg.Server.Name, Version, env.Logger)
	if err := tk.Register(srv); err != nil {
		return err
	}

	if cfg.Server.Transport == config.TransportHTTP {
		return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
	}
	return srv.RunStdio(cmd.Context())
}
