// Package media describes the tracks of a probed media file.
//
// A Descriptor is produced by the probe package and consumed read-only by the
// ffmpeg command builder. Track indexes are file-wide stream indexes as
// reported by ffprobe, not positions within a kind.
package media
