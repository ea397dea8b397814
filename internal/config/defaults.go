package config

const (
	defaultStagingDir = "~/.local/share/autocaptions/staging"
	defaultOutputDir  = "~/.local/share/autocaptions/output"
	defaultLogDir     = "~/.local/share/autocaptions/logs"
	defaultStateDir   = "~/.local/share/autocaptions/state"

	defaultRecognizerModel       = "base"
	defaultRecognizerDevice      = "cpu"
	defaultRecognizerComputeType = "float32"
	defaultRecognizerVADMethod   = "silero"
	defaultRecognizerLanguage    = "en"
	defaultRecognizerBatchSize   = 4
	defaultRecognizerTimeout     = 900

	defaultTTSTimeout = 300

	defaultFontName      = "Arial"
	defaultFontSize      = 36
	defaultPrimaryColour = "&H00FFFFFF" // white
	defaultOutlineColour = "&H000000FF" // black outline, opaque
	defaultBackColour    = "&H80000000" // semi-transparent background
	defaultAlignment     = 2            // bottom centre
	defaultMarginL       = 20
	defaultMarginR       = 20
	defaultMarginV       = 50
	defaultBorderStyle   = 1
	defaultOutlineWidth  = 2.0
	defaultShadowDepth   = 2.0

	defaultMaxLineChars      = 42
	defaultMaxLines          = 2
	defaultMaxCueSeconds     = 6.0
	defaultMinCueSeconds     = 1.0
	defaultReadingSpeedCPS   = 15.0
	defaultSilenceGapSeconds = 1.25
	defaultCueGapSeconds     = 0.05

	defaultLeadSeconds  = 0.25
	defaultTrailSeconds = 0.50

	defaultVideoTailSeconds = 2.0
	defaultBurnTimeout      = 1800

	defaultTelegramRequestTimeout = 60

	defaultQueuePollInterval   = 5
	defaultMaxWorkers          = 1
	defaultRecognizeRetries    = 2
	defaultBurnRetries         = 2
	defaultRetryBackoffSeconds = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Recognizer: Recognizer{
			Model:          defaultRecognizerModel,
			Device:         defaultRecognizerDevice,
			ComputeType:    defaultRecognizerComputeType,
			VADMethod:      defaultRecognizerVADMethod,
			Language:       defaultRecognizerLanguage,
			BatchSize:      defaultRecognizerBatchSize,
			TimeoutSeconds: defaultRecognizerTimeout,
		},
		TTS: TTS{
			TimeoutSeconds: defaultTTSTimeout,
		},
		Style: Style{
			FontName:      defaultFontName,
			FontSize:      defaultFontSize,
			PrimaryColour: defaultPrimaryColour,
			OutlineColour: defaultOutlineColour,
			BackColour:    defaultBackColour,
			Bold:          true,
			Alignment:     defaultAlignment,
			MarginL:       defaultMarginL,
			MarginR:       defaultMarginR,
			MarginV:       defaultMarginV,
			BorderStyle:   defaultBorderStyle,
			Outline:       defaultOutlineWidth,
			Shadow:        defaultShadowDepth,
		},
		Segmentation: Segmentation{
			MaxLineChars:      defaultMaxLineChars,
			MaxLines:          defaultMaxLines,
			MaxCueSeconds:     defaultMaxCueSeconds,
			MinCueSeconds:     defaultMinCueSeconds,
			ReadingSpeedCPS:   defaultReadingSpeedCPS,
			SilenceGapSeconds: defaultSilenceGapSeconds,
			CueGapSeconds:     defaultCueGapSeconds,
		},
		Alignment: Alignment{
			LeadSeconds:  defaultLeadSeconds,
			TrailSeconds: defaultTrailSeconds,
		},
		Burn: Burn{
			VideoTailSeconds: defaultVideoTailSeconds,
			TimeoutSeconds:   defaultBurnTimeout,
		},
		Telegram: Telegram{
			RequestTimeout: defaultTelegramRequestTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:   defaultQueuePollInterval,
			MaxWorkers:          defaultMaxWorkers,
			RecognizeRetries:    defaultRecognizeRetries,
			BurnRetries:         defaultBurnRetries,
			RetryBackoffSeconds: defaultRetryBackoffSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
