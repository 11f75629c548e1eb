// Package models holds the request and response bodies of the ffmcast API.
package models

import (
	"github.com/smazurov/ffmcast/internal/icecast"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// Defaults models
type DefaultsData struct {
	AudioBitrate    string         `json:"audio_bitrate" example:"128K" doc:"Default audio bitrate"`
	VideoBitrate    string         `json:"video_bitrate" example:"900K" doc:"Default video bitrate"`
	ResolutionScale string         `json:"resolution_scale" example:"480:-1" doc:"Default scale filter argument"`
	Ingest          icecast.Target `json:"ingest" doc:"Default Icecast target"`
}

type DefaultsResponse struct {
	Body DefaultsData
}

// Probe models
type ProbeRequest struct {
	File string `query:"file" required:"true" minLength:"1" example:"/srv/media/movie.mkv" doc:"Path of the media file on the server"`
}

type ProbeResponse struct {
	Body *media.Descriptor
}

// Command models
type CommandRequestData struct {
	File            string          `json:"file" minLength:"1" example:"/srv/media/movie.mkv" doc:"Path of the media file on the server"`
	AudioBitrate    string          `json:"audio_bitrate,omitempty" example:"192K" doc:"Audio bitrate, defaults to the configured value"`
	VideoBitrate    string          `json:"video_bitrate,omitempty" example:"2M" doc:"Video bitrate, defaults to the configured value"`
	ResolutionScale string          `json:"resolution_scale,omitempty" example:"-1:720" doc:"Scale filter argument, defaults to the configured value"`
	Seek            string          `json:"seek,omitempty" example:"00:10:00" doc:"Start position as [[hh:]mm:]ss"`
	Ingest          *icecast.Target `json:"ingest,omitempty" doc:"Icecast target, defaults to the configured one"`
	Video           *int            `json:"video,omitempty" minimum:"-1" example:"0" doc:"Position in the video track list, -1 for the first track"`
	Audio           *int            `json:"audio,omitempty" minimum:"-1" example:"0" doc:"Position in the audio track list, -1 for the first track"`
	Subtitle        *int            `json:"subtitle,omitempty" minimum:"-1" example:"-1" doc:"Position in the subtitle track list, -1 for none"`
}

type CommandRequest struct {
	Body CommandRequestData
}

type CommandData struct {
	Args        []string `json:"args" doc:"ffmpeg argument vector, argv[0] included"`
	Command     string   `json:"command" doc:"Shell-quoted command line"`
	PlaybackURL string   `json:"playback_url" example:"http://localhost:8000/stream.ogg" doc:"URL listeners open"`
	Subtitle    string   `json:"subtitle" enum:"none,text,bitmap" example:"none" doc:"How subtitles are burned in"`
}

type CommandResponse struct {
	Body CommandData
}
