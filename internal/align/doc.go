// Package align transfers timing from recognized speech onto the canonical
// transcript.
//
// The canonical transcript is authoritative for content and the recognizer
// output is authoritative for timing. A minimum-edit-distance alignment maps
// every canonical token to at most one recognized word; tokens the recognizer
// never heard receive intervals interpolated between their nearest resolved
// neighbours. The output always has exactly one entry per canonical token, in
// the original order, with monotonic non-overlapping intervals.
package align
