package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authfront-dev/authfront/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd(version string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr, version, commonOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from WEB_ADDRESS)")

	return cmd
}

func runServe(ctx context.Context, addr, version string, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if addr != "" {
		o.cfg.Web.Address = addr
	}

	env, err := o.open()
	if err != nil {
		return err
	}
	defer env.Close()

	srv, err := server.New(o.cfg, env, o.env.Logger, version)
	if err != nil {
		return err
	}

	fmt.Fprintf(o.output(), "Serving http://%s (backend %s)\n", displayAddr(o.cfg.Web.Address), env.BackendURL)
	return srv.Run(ctx)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
