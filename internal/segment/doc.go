// Package segment groups timed tokens into caption cues.
//
// Cues are packed greedily while character, duration, and reading speed
// constraints hold; sentence-ending punctuation and silence gaps between
// tokens close a cue early. A finished cue's end time is extended, never
// shortened, up to a readability floor, clamped so consecutive cues never
// overlap. A token is never split across two cues, even when it alone exceeds
// the character bound.
package segment
