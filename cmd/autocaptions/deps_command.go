package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autocaptions/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external dependencies and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			binaries := deps.CheckSystem(cfg)
			directories := deps.CheckDirectories(cfg)
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(binaries))
			for _, status := range binaries {
				rows = append(rows, []string{status.Name, status.Command, availabilityLabel(status), status.Detail})
			}
			fmt.Fprintln(out, "Binaries")
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Command", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			rows = rows[:0]
			for _, status := range directories {
				rows = append(rows, []string{status.Name, status.Command, availabilityLabel(status), status.Detail})
			}
			fmt.Fprintln(out, "Directories")
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Path", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if !deps.Satisfied(binaries) || !deps.Satisfied(directories) {
				return fmt.Errorf("one or more required dependencies are unavailable")
			}
			fmt.Fprintln(out, "All dependencies satisfied")
			return nil
		},
	}
}

func availabilityLabel(status deps.Status) string {
	switch {
	case status.Available:
		return "ok"
	case status.Optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}
