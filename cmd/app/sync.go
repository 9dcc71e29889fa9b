package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/mirror"
	"github.com/akyairhashvil/deepwork/internal/web"
)

var errNoMirrors = errors.New("no mirrors configured; set mirror.file.path or mirror.sheets.spreadsheet_id")

func syncCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push all data to the configured mirrors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			syncer, _ := a.syncer(cmd.Context())
			if syncer == nil {
				return errNoMirrors
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pushing to %d mirror(s)\n", len(syncer.Mirrors()))
			results, err := syncer.Sync(cmd.Context())
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = r.Err.Error()
					if errors.Is(r.Err, mirror.ErrSheetsAuth) {
						status += " (set a fresh token)"
					}
				}
				fmt.Fprintf(out, "%-8s %-6s %s\n", r.Mirror, r.Duration.Round(time.Millisecond), status)
			}
			return err
		},
	}
}

func serveCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}

			var opts []web.Option
			if syncer, _ := a.syncer(cmd.Context()); syncer != nil {
				opts = append(opts, web.WithChangeHook(func(ctx context.Context) {
					if _, err := syncer.Sync(ctx); err != nil {
						a.logger.Warn("mirror sync after api write failed", zap.Error(err))
					}
				}))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
			return web.NewServer(a.db, a.logger, opts...).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
