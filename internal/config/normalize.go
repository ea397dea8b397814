package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRecognizer()
	c.normalizeTTS()
	c.normalizeTelegram()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecognizer() {
	c.Recognizer.Model = strings.TrimSpace(c.Recognizer.Model)
	if c.Recognizer.Model == "" {
		c.Recognizer.Model = defaultRecognizerModel
	}
	c.Recognizer.Device = strings.ToLower(strings.TrimSpace(c.Recognizer.Device))
	if c.Recognizer.Device == "" {
		c.Recognizer.Device = defaultRecognizerDevice
	}
	c.Recognizer.ComputeType = strings.ToLower(strings.TrimSpace(c.Recognizer.ComputeType))
	if c.Recognizer.ComputeType == "" {
		c.Recognizer.ComputeType = defaultRecognizerComputeType
	}
	c.Recognizer.VADMethod = strings.ToLower(strings.TrimSpace(c.Recognizer.VADMethod))
	if c.Recognizer.VADMethod == "" {
		c.Recognizer.VADMethod = defaultRecognizerVADMethod
	}
	c.Recognizer.Language = strings.ToLower(strings.TrimSpace(c.Recognizer.Language))
	if c.Recognizer.BatchSize <= 0 {
		c.Recognizer.BatchSize = defaultRecognizerBatchSize
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Command = strings.TrimSpace(c.TTS.Command)
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeout
	}
}

func (c *Config) normalizeTelegram() {
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.BotToken = value
		}
	}
	if c.Telegram.ChatID == "" {
		if value, ok := os.LookupEnv("TELEGRAM_CHAT_ID"); ok {
			c.Telegram.ChatID = value
		}
	}
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	c.Telegram.ChatID = strings.TrimSpace(c.Telegram.ChatID)
	if c.Telegram.RequestTimeout <= 0 {
		c.Telegram.RequestTimeout = defaultTelegramRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
