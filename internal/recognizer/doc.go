// Package recognizer abstracts the external speech-recognition engine.
//
// The engine is a black box that turns an audio file into word hypotheses with
// start/end offsets. The aligner consumes those words and validates their
// monotonicity; this package never repairs engine output. The default
// implementation shells out to WhisperX through uvx and decodes its word-level
// JSON payload.
package recognizer
