// Package icecast derives ingest and playback URLs for an Icecast mount.
package icecast

import "fmt"

// Target is an Icecast mount. Fields are used verbatim.
type Target struct {
	Auth  string `json:"auth" example:"hackme:hackme" doc:"Source credentials as user:pass"`
	Host  string `json:"host" example:"localhost:8000" doc:"Server host:port"`
	Mount string `json:"mount" example:"stream.ogg" doc:"Mount point"`
}

// IngestURL is the URL ffmpeg publishes to.
func (t Target) IngestURL() string {
	return fmt.Sprintf("icecast://%s@%s/%s", t.Auth, t.Host, t.Mount)
}

// PlaybackURL is the URL listeners open.
func (t Target) PlaybackURL() string {
	return fmt.Sprintf("http://%s/%s", t.Host, t.Mount)
}
