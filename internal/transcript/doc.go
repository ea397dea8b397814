// Package transcript tokenizes narration text into comparable token streams.
//
// The same normalization rules are applied to the canonical transcript and to
// recognizer output so the two streams stay comparable for alignment: tokens
// are split on whitespace, lowercased, stripped of leading and trailing
// punctuation for comparison only, and run through a contraction expansion
// table. The original surface form is always retained for rendering.
package transcript
