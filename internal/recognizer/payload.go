package recognizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type whisperXSegment struct {
	Text  string         `json:"text"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// loadWords flattens a WhisperX JSON payload into the word list. WhisperX
// omits timestamps for tokens it could not align (digits, symbols); those
// entries are dropped here and later recovered by interval interpolation.
func loadWords(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}

	var words []Word
	for _, segment := range payload.Segments {
		for _, word := range segment.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" || word.Start == nil || word.End == nil {
				continue
			}
			words = append(words, Word{Text: text, Start: *word.Start, End: *word.End})
		}
	}
	return words, nil
}
