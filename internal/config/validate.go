package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecognizer(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateBurn(); err != nil {
		return err
	}
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateRecognizer() error {
	switch c.Recognizer.Device {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("recognizer.device must be \"cpu\" or \"cuda\", got %q", c.Recognizer.Device)
	}
	if c.Recognizer.BatchSize <= 0 {
		return errors.New("recognizer.batch_size must be positive")
	}
	if c.Recognizer.TimeoutSeconds <= 0 {
		return errors.New("recognizer.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if !c.TTS.Enabled {
		return nil
	}
	if strings.TrimSpace(c.TTS.Command) == "" {
		return errors.New("tts.command must be set when tts.enabled is true")
	}
	return nil
}

func (c *Config) validateStyle() error {
	if strings.TrimSpace(c.Style.FontName) == "" {
		return errors.New("style.font_name must be set")
	}
	if c.Style.FontSize <= 0 {
		return errors.New("style.font_size must be positive")
	}
	if c.Style.Alignment < 1 || c.Style.Alignment > 9 {
		return errors.New("style.alignment must be a numpad position between 1 and 9")
	}
	if c.Style.BorderStyle != 1 && c.Style.BorderStyle != 3 {
		return errors.New("style.border_style must be 1 (outline) or 3 (opaque box)")
	}
	for field, colour := range map[string]string{
		"style.primary_colour": c.Style.PrimaryColour,
		"style.outline_colour": c.Style.OutlineColour,
		"style.back_colour":    c.Style.BackColour,
	} {
		if err := validateColour(colour); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if c.Style.Outline < 0 {
		return errors.New("style.outline must not be negative")
	}
	if c.Style.Shadow < 0 {
		return errors.New("style.shadow must not be negative")
	}
	return nil
}

func validateColour(value string) error {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "&H") {
		return fmt.Errorf("colour %q must use the &HAABBGGRR form", value)
	}
	digits := trimmed[2:]
	if len(digits) == 0 || len(digits) > 8 {
		return fmt.Errorf("colour %q must carry 1 to 8 hex digits", value)
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("colour %q contains a non-hex digit", value)
		}
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MaxLineChars <= 0 {
		return errors.New("segmentation.max_line_chars must be positive")
	}
	if c.Segmentation.MaxLines <= 0 {
		return errors.New("segmentation.max_lines must be positive")
	}
	if c.Segmentation.MinCueSeconds <= 0 {
		return errors.New("segmentation.min_cue_seconds must be positive")
	}
	if c.Segmentation.MaxCueSeconds < c.Segmentation.MinCueSeconds {
		return errors.New("segmentation.max_cue_seconds must be at least segmentation.min_cue_seconds")
	}
	if c.Segmentation.ReadingSpeedCPS <= 0 {
		return errors.New("segmentation.reading_speed_cps must be positive")
	}
	if c.Segmentation.SilenceGapSeconds < 0 {
		return errors.New("segmentation.silence_gap_seconds must not be negative")
	}
	if c.Segmentation.CueGapSeconds < 0 {
		return errors.New("segmentation.cue_gap_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.LeadSeconds < 0 {
		return errors.New("alignment.lead_seconds must not be negative")
	}
	if c.Alignment.TrailSeconds < 0 {
		return errors.New("alignment.trail_seconds must not be negative")
	}
	for from, to := range c.Alignment.Contractions {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return errors.New("alignment.contractions entries must not be empty")
		}
	}
	return nil
}

func (c *Config) validateBurn() error {
	if c.Burn.VideoTailSeconds < 0 {
		return errors.New("burn.video_tail_seconds must not be negative")
	}
	if c.Burn.TimeoutSeconds <= 0 {
		return errors.New("burn.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTelegram() error {
	hasToken := c.Telegram.BotToken != ""
	hasChat := c.Telegram.ChatID != ""
	if hasToken != hasChat {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Telegram.RequestTimeout <= 0 {
		return errors.New("telegram.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	for name, value := range map[string]int{
		"workflow.queue_poll_interval":   c.Workflow.QueuePollInterval,
		"workflow.max_workers":           c.Workflow.MaxWorkers,
		"workflow.retry_backoff_seconds": c.Workflow.RetryBackoffSeconds,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Workflow.RecognizeRetries < 0 {
		return errors.New("workflow.recognize_retries must not be negative")
	}
	if c.Workflow.BurnRetries < 0 {
		return errors.New("workflow.burn_retries must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
