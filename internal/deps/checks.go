package deps

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"autocaptions/internal/config"
)

// CheckSystem evaluates every binary the configured pipeline will invoke.
func CheckSystem(cfg *config.Config) []Status {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction and subtitle burn-in",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media duration probing",
		},
		{
			Name:        "uvx",
			Command:     cfg.UVXBinary(),
			Description: "Required for WhisperX-driven recognition",
		},
	}
	if cfg.TTS.Enabled {
		requirements = append(requirements, Requirement{
			Name:        "TTS",
			Command:     cfg.TTS.Command,
			Description: "Required for narration synthesis",
		})
	}
	return CheckBinaries(requirements)
}

// CheckDirectories verifies the configured working directories exist and
// are readable and writable.
func CheckDirectories(cfg *config.Config) []Status {
	checks := []struct {
		name string
		path string
	}{
		{"Staging directory", cfg.Paths.StagingDir},
		{"Output directory", cfg.Paths.OutputDir},
		{"Log directory", cfg.Paths.LogDir},
		{"State directory", cfg.Paths.StateDir},
	}
	results := make([]Status, 0, len(checks))
	for _, check := range checks {
		results = append(results, checkDirectoryAccess(check.name, check.path))
	}
	return results
}

func checkDirectoryAccess(name, path string) Status {
	status := Status{Name: name, Command: path}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			status.Detail = "does not exist"
		} else {
			status.Detail = fmt.Sprintf("stat: %v", err)
		}
		return status
	}
	if !info.IsDir() {
		status.Detail = "is not a directory"
		return status
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		status.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return status
	}
	status.Available = true
	status.Detail = "read/write ok"
	return status
}
