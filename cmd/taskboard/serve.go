package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/credential"
)

var errNoToken = errors.New("server.require_token is set but no API token is stored; run `taskboard token set` first")

func serveCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task store over the HTTP record API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return runServe(cmd.Context(), opts, addr)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, addr string) error {
	rt, err := openBoard(opts, configuredLogPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	if addr == "" {
		addr = rt.cfg.Server.Addr
	}

	var serverOpts []api.Option
	if rt.cfg.Server.RequireToken {
		creds, err := credential.Open()
		if err != nil {
			return err
		}
		token, err := creds.APIToken()
		if err != nil {
			return err
		}
		if token == "" {
			return errNoToken
		}
		serverOpts = append(serverOpts, api.WithToken(token))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(rt.backend, rt.logger, serverOpts...).Serve(ctx, addr)
}
