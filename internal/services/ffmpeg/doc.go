// Package ffmpeg wraps the ffmpeg command line tool to render episode
// videos. The Client interface keeps the pipeline testable without a real
// encoder on PATH.
package ffmpeg
