package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autocaptions/internal/assdoc"
	"autocaptions/internal/config"
	"autocaptions/internal/logging"
	"autocaptions/internal/queue"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/services"
)

type fakeMedia struct {
	calls     []string
	probe     float64
	burnErr   error
	burnVideo string
}

func (f *fakeMedia) ExtractAudio(_ context.Context, source, destination string) error {
	f.calls = append(f.calls, "extract:"+source)
	return os.WriteFile(destination, []byte("wav"), 0o644)
}

func (f *fakeMedia) ProbeDuration(context.Context, string) (float64, error) {
	f.calls = append(f.calls, "probe")
	return f.probe, nil
}

func (f *fakeMedia) AdjustDuration(_ context.Context, _ string, target float64, outputPath string) error {
	f.calls = append(f.calls, "adjust")
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

func (f *fakeMedia) MuxSpeech(_ context.Context, _, _, outputPath string) error {
	f.calls = append(f.calls, "mux")
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

func (f *fakeMedia) Burn(_ context.Context, videoPath, _, outputPath string) error {
	f.calls = append(f.calls, "burn")
	f.burnVideo = videoPath
	if f.burnErr != nil {
		return f.burnErr
	}
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

type fakeRecognizer struct {
	words []recognizer.Word
	err   error
}

func (f *fakeRecognizer) Transcribe(context.Context, string) ([]recognizer.Word, error) {
	return f.words, f.err
}

type fakeNotifier struct {
	completed []string
	failed    []string
}

func (f *fakeNotifier) NotifyJobCompleted(_ context.Context, title, _ string) error {
	f.completed = append(f.completed, title)
	return nil
}

func (f *fakeNotifier) NotifyJobFailed(_ context.Context, title, _ string) error {
	f.failed = append(f.failed, title)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func newTestEnv(t *testing.T) (*config.Config, *queue.Store, *queue.Job) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store, err := queue.OpenPath(filepath.Join(cfg.Paths.StateDir, "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	source := filepath.Join(root, "clip.mp4")
	transcriptPath := filepath.Join(root, "clip.txt")
	if err := os.WriteFile(source, []byte("mp4"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := os.WriteFile(transcriptPath, []byte("Hello world this is a test."), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	job, err := store.NewJob(context.Background(), "Test Clip", source, transcriptPath)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return &cfg, store, job
}

func testWords() []recognizer.Word {
	return []recognizer.Word{
		{Text: "hello", Start: 0.00, End: 0.40},
		{Text: "world", Start: 0.45, End: 0.90},
		{Text: "this", Start: 1.00, End: 1.20},
		{Text: "is", Start: 1.25, End: 1.35},
		{Text: "a", Start: 1.40, End: 1.45},
		{Text: "test", Start: 1.50, End: 1.95},
	}
}

func TestPipelineStagesChainArtifacts(t *testing.T) {
	cfg, store, job := newTestEnv(t)
	ctx := context.Background()
	media := &fakeMedia{probe: 2.0}
	notifier := &fakeNotifier{}
	logger := logging.NewNop()

	extract := NewExtractStage(cfg, store, media, nil, logger)
	if err := extract.Prepare(ctx, job); err != nil {
		t.Fatalf("extract prepare: %v", err)
	}
	if err := extract.Execute(ctx, job); err != nil {
		t.Fatalf("extract execute: %v", err)
	}
	if job.AudioPath == "" {
		t.Fatal("extract did not set audio path")
	}

	recognize := NewRecognizeStage(cfg, store, &fakeRecognizer{words: testWords()}, logger)
	if err := recognize.Prepare(ctx, job); err != nil {
		t.Fatalf("recognize prepare: %v", err)
	}
	if err := recognize.Execute(ctx, job); err != nil {
		t.Fatalf("recognize execute: %v", err)
	}
	if job.WordsPath == "" {
		t.Fatal("recognize did not set words path")
	}

	alignStage := NewAlignStage(cfg, store, media, logger)
	if err := alignStage.Prepare(ctx, job); err != nil {
		t.Fatalf("align prepare: %v", err)
	}
	if err := alignStage.Execute(ctx, job); err != nil {
		t.Fatalf("align execute: %v", err)
	}
	tokens, err := readTokens(job.TokensPath)
	if err != nil {
		t.Fatalf("read tokens: %v", err)
	}
	if len(tokens) != 6 {
		t.Fatalf("expected 6 aligned tokens, got %d", len(tokens))
	}

	segmentStage := NewSegmentStage(cfg, store, logger)
	if err := segmentStage.Prepare(ctx, job); err != nil {
		t.Fatalf("segment prepare: %v", err)
	}
	if err := segmentStage.Execute(ctx, job); err != nil {
		t.Fatalf("segment execute: %v", err)
	}

	style := NewStyleStage(cfg, store, logger)
	if err := style.Prepare(ctx, job); err != nil {
		t.Fatalf("style prepare: %v", err)
	}
	if err := style.Execute(ctx, job); err != nil {
		t.Fatalf("style execute: %v", err)
	}
	raw, err := os.ReadFile(job.SubtitlePath)
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	doc, err := assdoc.Parse(string(raw))
	if err != nil {
		t.Fatalf("rendered subtitles do not parse: %v", err)
	}
	if len(doc.Events) == 0 {
		t.Fatal("expected dialogue events in rendered subtitles")
	}

	burn := NewBurnStage(cfg, store, media, notifier, logger)
	if err := burn.Prepare(ctx, job); err != nil {
		t.Fatalf("burn prepare: %v", err)
	}
	if err := burn.Execute(ctx, job); err != nil {
		t.Fatalf("burn execute: %v", err)
	}
	if job.FinalFile == "" {
		t.Fatal("burn did not set final file")
	}
	if !strings.HasPrefix(filepath.Base(job.FinalFile), "Test Clip") {
		t.Fatalf("final file not named after title: %s", job.FinalFile)
	}
	if _, err := os.Stat(job.FinalFile); err != nil {
		t.Fatalf("final file not published: %v", err)
	}
	if len(notifier.completed) != 1 {
		t.Fatalf("expected completion notification, got %v", notifier.completed)
	}
	if media.burnVideo != job.SourcePath {
		t.Fatalf("burn should use the source video, got %s", media.burnVideo)
	}
}

func TestExtractRejectsEmptyTranscript(t *testing.T) {
	cfg, store, job := newTestEnv(t)
	if err := os.WriteFile(job.TranscriptPath, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("truncate transcript: %v", err)
	}
	extract := NewExtractStage(cfg, store, &fakeMedia{}, nil, logging.NewNop())
	err := extract.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestExtractSynthesizesNarrationWhenTTSEnabled(t *testing.T) {
	cfg, store, job := newTestEnv(t)
	cfg.TTS.Enabled = true
	cfg.TTS.Command = "piper"
	media := &fakeMedia{probe: 8.0}

	var synthText string
	engine := engineFunc(func(_ context.Context, text, outputPath string) error {
		synthText = text
		return os.WriteFile(outputPath, []byte("wav"), 0o644)
	})

	extract := NewExtractStage(cfg, store, media, engine, logging.NewNop())
	if err := extract.Execute(context.Background(), job); err != nil {
		t.Fatalf("extract execute: %v", err)
	}
	if !strings.Contains(synthText, "Hello world") {
		t.Fatalf("engine did not receive transcript, got %q", synthText)
	}
	joined := strings.Join(media.calls, ",")
	for _, want := range []string{"probe", "adjust", "mux"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %s in media calls %v", want, media.calls)
		}
	}

	// A later burn picks up the prepared video instead of the source.
	staging := job.StagingRoot(cfg.Paths.StagingDir)
	if preparedVideo(staging, job.SourcePath) == job.SourcePath {
		t.Fatal("expected prepared video in staging")
	}
}

type engineFunc func(ctx context.Context, text, outputPath string) error

func (f engineFunc) Synthesize(ctx context.Context, text, outputPath string) error {
	return f(ctx, text, outputPath)
}

func TestRecognizeSurfacesExternalFailure(t *testing.T) {
	cfg, store, job := newTestEnv(t)
	job.AudioPath = filepath.Join(t.TempDir(), "speech.wav")
	cause := services.Wrap(services.ErrExternalTool, "recognizing", "whisperx", "speech recognition failed", errors.New("boom"))
	recognize := NewRecognizeStage(cfg, store, &fakeRecognizer{err: cause}, logging.NewNop())

	err := recognize.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !services.Retryable(err) {
		t.Fatalf("recognizer failures should be retryable")
	}
}

func TestBurnFailureDoesNotNotify(t *testing.T) {
	cfg, store, job := newTestEnv(t)
	staging := job.StagingRoot(cfg.Paths.StagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	job.SubtitlePath = filepath.Join(staging, subtitleName)
	if err := os.WriteFile(job.SubtitlePath, []byte("[Script Info]\n"), 0o644); err != nil {
		t.Fatalf("write subtitles: %v", err)
	}

	notifier := &fakeNotifier{}
	media := &fakeMedia{burnErr: errors.New("encoder crashed")}
	burn := NewBurnStage(cfg, store, media, notifier, logging.NewNop())

	if err := burn.Execute(context.Background(), job); err == nil {
		t.Fatal("expected burn failure")
	}
	if len(notifier.completed) != 0 {
		t.Fatalf("failed burn must not notify completion")
	}
}
