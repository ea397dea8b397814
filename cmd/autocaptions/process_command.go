package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autocaptions/internal/config"
	"autocaptions/internal/queue"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var transcriptFlag string
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Caption a single video and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath, transcriptPath, err := resolveJobInputs(args[0], transcriptFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := newLogger(cfg)
				if err != nil {
					return err
				}

				job, err := store.NewJob(cmd.Context(), titleFlag, videoPath, transcriptPath)
				if err != nil {
					return err
				}

				manager := buildManager(cfg, store, logger)
				if err := manager.RunUntilIdle(cmd.Context()); err != nil {
					return err
				}

				final, err := store.GetByID(cmd.Context(), job.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch final.Status {
				case queue.StatusCompleted:
					fmt.Fprintf(out, "Captioned video written to %s\n", final.FinalFile)
					return nil
				case queue.StatusReview:
					return fmt.Errorf("job needs review: %s", final.ReviewReason)
				default:
					return fmt.Errorf("job %s: %s", final.Status, final.ErrorMessage)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&transcriptFlag, "transcript", "t", "", "Transcript file (defaults to the video path with .txt)")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Job title (defaults to the video file name)")
	return cmd
}
