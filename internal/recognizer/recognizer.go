package recognizer

import "context"

// Word is one recognized word hypothesis. Times are offsets into the audio
// track in seconds; End is always >= Start for valid engine output.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Recognizer transcribes an audio file into timed word hypotheses.
// Implementations must return words ordered by time; callers validate
// monotonicity rather than repairing it.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string) ([]Word, error)
}
