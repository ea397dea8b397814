// Package assdoc builds, serializes, and parses Advanced SubStation Alpha
// (ASS) subtitle documents.
//
// The serializer owns the byte-exact formatting rules: the V4+ style Format
// line field order, &HAABBGGRR colour encoding, and H:MM:SS.CC timestamps
// rounded half up to centiseconds. Event starts must be non-decreasing after
// rounding; Render fails loudly instead of emitting out-of-order cues. A
// document with zero events is valid and renders as a header-only file.
package assdoc
