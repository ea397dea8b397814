// Package media wraps the ffmpeg and ffprobe invocations the pipeline
// needs: audio extraction for recognition, duration probing, video
// duration adjustment, speech muxing, and subtitle burn-in.
package media
