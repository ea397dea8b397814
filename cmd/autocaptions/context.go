package main

import (
	"log/slog"
	"strings"
	"sync"

	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/media"
	"autocaptions/internal/notify"
	"autocaptions/internal/pipeline"
	"autocaptions/internal/queue"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/tts"
	"autocaptions/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the queue store, runs fn, and closes the store.
func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// buildManager wires the full pipeline against the given store.
func buildManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *workflow.Manager {
	ffmpeg := media.NewFFmpeg(cfg, logger)
	rec := recognizer.NewWhisperX(cfg, logger)
	notifier := notify.NewService(cfg)

	var engine tts.Engine
	if cfg.TTS.Enabled {
		engine = tts.NewCommandEngine(cfg, logger)
	}

	stages := workflow.StageSet{
		Extract:   pipeline.NewExtractStage(cfg, store, ffmpeg, engine, logger),
		Recognize: pipeline.NewRecognizeStage(cfg, store, rec, logger),
		Align:     pipeline.NewAlignStage(cfg, store, ffmpeg, logger),
		Segment:   pipeline.NewSegmentStage(cfg, store, logger),
		Style:     pipeline.NewStyleStage(cfg, store, logger),
		Burn:      pipeline.NewBurnStage(cfg, store, ffmpeg, notifier, logger),
	}
	return workflow.NewManager(cfg, store, stages, notifier, logger)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg)
}
