package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"autocaptions/internal/config"
	"autocaptions/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process queued jobs continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := newLogger(cfg)
				if err != nil {
					return err
				}
				manager := buildManager(cfg, store, logger)

				if once {
					return manager.RunUntilIdle(cmd.Context())
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := manager.Start(runCtx); err != nil {
					return err
				}
				if isTerminal(os.Stdout) {
					fmt.Fprintln(cmd.OutOrStdout(), "Processing queue; press Ctrl+C to stop")
				}
				<-runCtx.Done()
				manager.Stop()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Drain the queue and exit instead of polling")
	return cmd
}
