package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"autocaptions/internal/align"
	"autocaptions/internal/recognizer"
	"autocaptions/internal/segment"
)

// Staging artifact names, relative to the job's staging root.
const (
	speechAudioName   = "speech.wav"
	narrationName     = "narration.wav"
	adjustedVideoName = "adjusted.mp4"
	preparedVideoName = "prepared.mp4"
	burnedVideoName   = "burned.mp4"
	wordsName         = "words.json"
	tokensName        = "tokens.json"
	cuesName          = "cues.json"
	subtitleName      = "captions.ass"
)

// preparedVideo returns the path of the narration-muxed video when the
// extract stage produced one, otherwise the original source.
func preparedVideo(stagingRoot, sourcePath string) string {
	prepared := filepath.Join(stagingRoot, preparedVideoName)
	if _, err := os.Stat(prepared); err == nil {
		return prepared
	}
	return sourcePath
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeWords(stagingRoot string, words []recognizer.Word) (string, error) {
	path := filepath.Join(stagingRoot, wordsName)
	return path, writeJSON(path, words)
}

func readWords(path string) ([]recognizer.Word, error) {
	var words []recognizer.Word
	if err := readJSON(path, &words); err != nil {
		return nil, err
	}
	return words, nil
}

func writeTokens(stagingRoot string, tokens []align.AlignedToken) (string, error) {
	path := filepath.Join(stagingRoot, tokensName)
	return path, writeJSON(path, tokens)
}

func readTokens(path string) ([]align.AlignedToken, error) {
	var tokens []align.AlignedToken
	if err := readJSON(path, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func writeCues(stagingRoot string, cues []segment.Cue) (string, error) {
	path := filepath.Join(stagingRoot, cuesName)
	return path, writeJSON(path, cues)
}

func readCues(stagingRoot string) ([]segment.Cue, error) {
	var cues []segment.Cue
	if err := readJSON(filepath.Join(stagingRoot, cuesName), &cues); err != nil {
		return nil, err
	}
	return cues, nil
}

// readTranscript loads the canonical transcript text for a job.
func readTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
