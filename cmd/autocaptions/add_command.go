package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autocaptions/internal/config"
	"autocaptions/internal/queue"
)

// resolveJobInputs validates the video path and locates the transcript,
// defaulting to the video path with a .txt extension.
func resolveJobInputs(videoArg, transcriptFlag string) (videoPath, transcriptPath string, err error) {
	videoPath, err = filepath.Abs(strings.TrimSpace(videoArg))
	if err != nil {
		return "", "", fmt.Errorf("resolve video path: %w", err)
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", "", fmt.Errorf("video file: %w", err)
	}

	transcriptPath = strings.TrimSpace(transcriptFlag)
	if transcriptPath == "" {
		transcriptPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".txt"
	}
	transcriptPath, err = filepath.Abs(transcriptPath)
	if err != nil {
		return "", "", fmt.Errorf("resolve transcript path: %w", err)
	}
	if _, err := os.Stat(transcriptPath); err != nil {
		return "", "", fmt.Errorf("transcript file: %w", err)
	}
	return videoPath, transcriptPath, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var transcriptFlag string
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "add <video>",
		Short: "Queue a video for captioning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath, transcriptPath, err := resolveJobInputs(args[0], transcriptFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.NewJob(cmd.Context(), titleFlag, videoPath, transcriptPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d (%s)\n", job.ID, job.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&transcriptFlag, "transcript", "t", "", "Transcript file (defaults to the video path with .txt)")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Job title (defaults to the video file name)")
	return cmd
}
