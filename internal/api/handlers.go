package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ffmcast/internal/api/models"
	"github.com/smazurov/ffmcast/internal/cast"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/prompt"
	"github.com/smazurov/ffmcast/internal/timestamp"
	"github.com/smazurov/ffmcast/internal/version"
)

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{Status: "ok", Message: "API is healthy"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-defaults",
		Method:      http.MethodGet,
		Path:        "/api/defaults",
		Summary:     "Defaults",
		Description: "Quality and Icecast defaults applied to command requests. Reloaded when the config file changes.",
		Tags:        []string{"commands"},
	}, func(_ context.Context, _ *struct{}) (*models.DefaultsResponse, error) {
		d := s.currentDefaults()
		return &models.DefaultsResponse{
			Body: models.DefaultsData{
				AudioBitrate:    d.AudioBitrate,
				VideoBitrate:    d.VideoBitrate,
				ResolutionScale: d.ResolutionScale,
				Ingest:          d.Ingest(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "probe-media",
		Method:      http.MethodGet,
		Path:        "/api/probe",
		Summary:     "Probe media",
		Description: "Run ffprobe on a file and list its video, audio and subtitle tracks",
		Tags:        []string{"media"},
	}, func(ctx context.Context, input *models.ProbeRequest) (*models.ProbeResponse, error) {
		desc, err := s.probe(ctx, input.File)
		if err != nil {
			return nil, err
		}
		return &models.ProbeResponse{Body: desc}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "build-command",
		Method:        http.MethodPost,
		Path:          "/api/commands",
		Summary:       "Build ffmpeg command",
		Description:   "Build the ffmpeg command that streams a file to Icecast. Nothing is executed.",
		Tags:          []string{"commands"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *models.CommandRequest) (*models.CommandResponse, error) {
		return s.buildCommand(ctx, &input.Body)
	})
}

func (s *Server) probe(ctx context.Context, file string) (*media.Descriptor, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Cannot read %s", file), err)
	}
	desc, err := s.prober(ctx, file)
	if err != nil {
		s.logger.Warn("Probe failed", "file", file, "error", err)
		return nil, huma.Error400BadRequest("Failed to probe media", err)
	}
	return desc, nil
}

func (s *Server) buildCommand(ctx context.Context, body *models.CommandRequestData) (*models.CommandResponse, error) {
	choices, err := s.choices(body)
	if err != nil {
		return nil, err
	}

	desc, err := s.probe(ctx, body.File)
	if err != nil {
		return nil, err
	}

	req, err := cast.BuildRequest(desc, choices)
	if err != nil {
		return nil, buildErr(err)
	}
	args, err := ffmpeg.BuildArgs(req, desc)
	if err != nil {
		return nil, buildErr(err)
	}

	mode := cast.SubtitleMode(req)
	if s.bus != nil {
		s.bus.Publish(events.CommandBuiltEvent{File: body.File, Subtitle: mode})
	}

	return &models.CommandResponse{
		Body: models.CommandData{
			Args:        args,
			Command:     ffmpeg.CommandLine(args),
			PlaybackURL: req.Ingest.PlaybackURL(),
			Subtitle:    mode,
		},
	}, nil
}

// choices merges the request over the current defaults and validates the
// free-form fields with the same rules the interactive prompts use.
func (s *Server) choices(body *models.CommandRequestData) (cast.Choices, error) {
	d := s.currentDefaults()
	c := cast.DefaultChoices()
	c.Ingest = d.Ingest()
	if body.Ingest != nil {
		c.Ingest = *body.Ingest
	}

	var details []error
	field := func(name, input, def string, v prompt.Validator) string {
		value, err := prompt.Validate(input, def, v)
		if err != nil {
			details = append(details, &huma.ErrorDetail{
				Message:  fmt.Sprintf("invalid %s", v.Name()),
				Location: "body." + name,
				Value:    input,
			})
		}
		return value
	}
	c.AudioBitrate = field("audio_bitrate", body.AudioBitrate, d.AudioBitrate, prompt.Bitrate)
	c.VideoBitrate = field("video_bitrate", body.VideoBitrate, d.VideoBitrate, prompt.Bitrate)
	c.ResolutionScale = field("resolution_scale", body.ResolutionScale, d.ResolutionScale, prompt.Scale)
	if !prompt.Auth.Match(c.Ingest.Auth) {
		details = append(details, &huma.ErrorDetail{
			Message:  "invalid icecast auth, want user:pass",
			Location: "body.ingest.auth",
			Value:    c.Ingest.Auth,
		})
	}

	if body.Seek != "" {
		seek, err := timestamp.Parse(body.Seek)
		if err != nil {
			details = append(details, &huma.ErrorDetail{
				Message:  err.Error(),
				Location: "body.seek",
				Value:    body.Seek,
			})
		}
		c.Seek = seek
	}

	if len(details) > 0 {
		return c, huma.Error422UnprocessableEntity("Invalid command request", details...)
	}

	if body.Video != nil {
		c.Video = *body.Video
	}
	if body.Audio != nil {
		c.Audio = *body.Audio
	}
	if body.Subtitle != nil {
		c.Subtitle = *body.Subtitle
	}
	return c, nil
}

// buildErr maps builder failures to 422; they all describe a request that
// does not fit the probed file.
func buildErr(err error) error {
	switch {
	case errors.Is(err, ffmpeg.ErrSelectionOutOfRange),
		errors.Is(err, ffmpeg.ErrSubtitleNotFound),
		errors.Is(err, ffmpeg.ErrTrackRequired):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	default:
		return huma.Error500InternalServerError("Failed to build command", err)
	}
}
