package config

import (
	"github.com/smazurov/ffmcast/internal/icecast"
	"github.com/smazurov/ffmcast/internal/logging"
)

// Defaults used when neither flags, env nor the config file say otherwise.
const (
	DefaultConfigPath        = "ffmcast.toml"
	DefaultAudioBitrate      = "128K"
	DefaultVideoBitrate      = "900K"
	DefaultResolutionScale   = "480:-1"
	DefaultIcecastAuth       = "hackme:hackme"
	DefaultIcecastHost       = "localhost:8000"
	DefaultIcecastMount      = "stream.ogg"
	DefaultQualityPrompt     = true
	DefaultIcecastPrompt     = false
	DefaultListen            = ":8090"
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "text"
	DefaultFfmpegStopTimeout = 5
)

// Options holds every ffmcast setting. Flag names are derived from field
// names (IcecastHost -> --icecast-host).
type Options struct {
	Config string `help:"Path to TOML configuration file" short:"c"`

	AudioBitrate    string `help:"Default audio bitrate" toml:"quality.audio_bitrate" env:"AUDIO_BITRATE"`
	VideoBitrate    string `help:"Default video bitrate" toml:"quality.video_bitrate" env:"VIDEO_BITRATE"`
	ResolutionScale string `help:"Default scale filter argument" toml:"quality.resolution_scale" env:"RESOLUTION_SCALE"`
	QualityPrompt   bool   `help:"Ask for bitrates and scale" toml:"quality.prompt" env:"QUALITY_PROMPT"`

	IcecastAuth   string `help:"Icecast source credentials (user:pass)" toml:"icecast.auth" env:"ICECAST_AUTH"`
	IcecastHost   string `help:"Icecast host:port" toml:"icecast.host" env:"ICECAST_HOST"`
	IcecastMount  string `help:"Icecast mount point" toml:"icecast.mount" env:"ICECAST_MOUNT"`
	IcecastPrompt bool   `help:"Ask for Icecast credentials, host and mount" toml:"icecast.prompt" env:"ICECAST_PROMPT"`

	DryRun bool `help:"Print the ffmpeg command and exit"`
	Yes    bool `help:"Run ffmpeg without asking for confirmation" short:"y"`

	FfmpegStopTimeout int `help:"Seconds ffmpeg gets to exit after an interrupt before it is killed" toml:"ffmpeg.stop_timeout" env:"FFMPEG_STOP_TIMEOUT"`

	Listen          string `help:"HTTP listen address for serve" toml:"server.listen" env:"LISTEN"`
	MetricsTextfile string `help:"Write Prometheus metrics to this file when a stream ends" toml:"metrics.textfile" env:"METRICS_TEXTFILE"`

	LoggingLevel   string `help:"Log level (debug, info, warn, error)" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Log format (text, json)" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingJournal bool   `help:"Also log to the systemd journal" toml:"logging.journal" env:"LOGGING_JOURNAL"`
	FfmpegLogLevel string `help:"Log level for ffmpeg output lines" toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
}

// DefaultOptions returns Options populated with the Default* constants.
func DefaultOptions() Options {
	return Options{
		Config:            DefaultConfigPath,
		AudioBitrate:      DefaultAudioBitrate,
		VideoBitrate:      DefaultVideoBitrate,
		ResolutionScale:   DefaultResolutionScale,
		QualityPrompt:     DefaultQualityPrompt,
		IcecastAuth:       DefaultIcecastAuth,
		IcecastHost:       DefaultIcecastHost,
		IcecastMount:      DefaultIcecastMount,
		IcecastPrompt:     DefaultIcecastPrompt,
		FfmpegStopTimeout: DefaultFfmpegStopTimeout,
		Listen:            DefaultListen,
		LoggingLevel:      DefaultLoggingLevel,
		LoggingFormat:     DefaultLoggingFormat,
	}
}

// Ingest is the configured Icecast target.
func (o Options) Ingest() icecast.Target {
	return icecast.Target{
		Auth:  o.IcecastAuth,
		Host:  o.IcecastHost,
		Mount: o.IcecastMount,
	}
}

// Logging converts the logging fields into a logging.Config.
func (o Options) Logging() logging.Config {
	cfg := logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Journal: o.LoggingJournal,
	}
	if o.FfmpegLogLevel != "" {
		cfg.Modules = map[string]string{"ffmpeg": o.FfmpegLogLevel}
	}
	return cfg
}
