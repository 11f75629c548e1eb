package cast

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/ffmcast/internal/config"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/process"
	"github.com/smazurov/ffmcast/internal/prompt"
	"github.com/smazurov/ffmcast/internal/timestamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsLine = "frame=  250 fps= 25 q=-0.0 size=    1024kB time=00:00:10.00 bitrate= 838.9kbits/s speed=1.01x"

type fakeRunner struct {
	calls  int
	args   []string
	lines  []string
	result process.Result
}

func (r *fakeRunner) Run(_ context.Context, _ string, args []string, out process.OutputHandler) process.Result {
	r.calls++
	r.args = args
	for _, line := range r.lines {
		out.HandleLine("stderr", line)
	}
	return r.result
}

type recordingObserver struct {
	mu       sync.Mutex
	progress []events.SessionProgressEvent
	finished []events.SessionFinishedEvent
	built    []events.CommandBuiltEvent
}

func (o *recordingObserver) ObserveProgress(e events.SessionProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, e)
}

func (o *recordingObserver) SessionFinished(e events.SessionFinishedEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, e)
}

func (o *recordingObserver) CommandBuilt(e events.CommandBuiltEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.built = append(o.built, e)
}

func mediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie [2020].mkv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func fakeProber(tracks ...media.Track) func(context.Context, string) (*media.Descriptor, error) {
	return func(_ context.Context, path string) (*media.Descriptor, error) {
		return media.NewDescriptor(path, timestamp.FromSeconds(5400), tracks), nil
	}
}

func movieTracks() []media.Track {
	return []media.Track{
		{Index: 0, CodecName: "h264", Kind: media.KindVideo},
		{Index: 1, CodecName: "aac", Kind: media.KindAudio, Tags: map[string]string{"language": "eng"}},
		{Index: 2, CodecName: "ac3", Kind: media.KindAudio, Tags: map[string]string{"language": "ger"}},
		{Index: 3, CodecName: "subrip", Kind: media.KindSubtitle},
		{Index: 4, CodecName: "hdmv_pgs_subtitle", Kind: media.KindSubtitle},
	}
}

type harness struct {
	out      *bytes.Buffer
	runner   *fakeRunner
	observer *recordingObserver
	session  *Session
}

func newHarness(opts config.Options, input string, tracks ...media.Track) *harness {
	h := &harness{
		out:      &bytes.Buffer{},
		runner:   &fakeRunner{result: process.Result{Outcome: process.OutcomeSuccess}},
		observer: &recordingObserver{},
	}
	h.session = NewSession(opts, prompt.New(strings.NewReader(input), h.out), fakeProber(tracks...), h.runner,
		WithObserver(h.observer), WithID("cast-test"))
	return h
}

func TestRunDefaultsStreamFirstTracks(t *testing.T) {
	file := mediaFile(t)
	// quality x3, seek, video, audio, subtitle -1, confirm
	h := newHarness(config.DefaultOptions(), "\n\n\n\n\n\n-1\ny\n", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	require.Equal(t, 1, h.runner.calls)

	desc, _ := fakeProber(movieTracks()...)(context.Background(), file)
	want, err := ffmpeg.BuildArgs(&ffmpeg.Request{
		AudioBitrate:    "128K",
		VideoBitrate:    "900K",
		ResolutionScale: "480:-1",
		Ingest:          config.DefaultOptions().Ingest(),
		Video:           desc.Video[0],
		Audio:           desc.Audio[0],
	}, desc)
	require.NoError(t, err)
	assert.Equal(t, want, h.runner.args)

	out := h.out.String()
	assert.Contains(t, out, "Seek (00:00:00 - 01:30:00) [00:00:00]: ")
	assert.Contains(t, out, "Video Stream Selection")
	assert.Contains(t, out, "-1: default/none")
	assert.Contains(t, out, "stream URL")
	assert.Contains(t, out, "http://localhost:8000/stream.ogg")
	assert.Contains(t, out, BannerFinished)

	require.Len(t, h.observer.built, 1)
	assert.Equal(t, SubtitleNone, h.observer.built[0].Subtitle)
	require.Len(t, h.observer.finished, 1)
	assert.Equal(t, "success", h.observer.finished[0].Outcome)
}

func TestRunSubtitleMenuDefaultsToFirstEntry(t *testing.T) {
	file := mediaFile(t)
	h := newHarness(config.DefaultOptions(), "\n\n\n\n\n\n\ny\n", movieTracks()...)

	_, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)

	require.Len(t, h.observer.built, 1)
	assert.Equal(t, SubtitleText, h.observer.built[0].Subtitle)
	assert.Contains(t, strings.Join(h.runner.args, " "), ":si=0")
}

func TestRunAnswersFlowIntoCommand(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.IcecastPrompt = true
	input := strings.Join([]string{
		"src:pw", "radio:8000", "film.ogg", // icecast
		"192K", "2M", "-1:720", // quality
		"1:02:03",     // seek
		"0", "1", "1", // video, audio (ac3), subtitle (pgs)
		"y",
	}, "\n") + "\n"
	h := newHarness(opts, input, movieTracks()...)

	_, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)

	args := h.runner.args
	assert.Equal(t, "icecast://src:pw@radio:8000/film.ogg", args[len(args)-1])
	assert.Contains(t, args, "01:02:03")
	assert.Contains(t, args, "192K")
	assert.Contains(t, args, "2M")
	assert.Contains(t, args, "0:2")
	assert.Contains(t, args, "[0:v][0:s:1]overlay,scale=-1:720[v]")
	assert.Equal(t, SubtitleBitmap, h.observer.built[0].Subtitle)
	assert.Contains(t, h.out.String(), "http://radio:8000/film.ogg")
}

func TestRunReasksOutOfRangeSelection(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	// seek, video 7 (bad) then 0, audio, subtitle -1
	h := newHarness(opts, "\n7\n0\n\n-1\ny\n", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, h.out.String(), "WARNING: ")
	assert.Equal(t, 2, strings.Count(h.out.String(), "Video Stream Selection"))
}

func TestRunReasksOverflowingSeek(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true
	h := newHarness(opts, "9999999999999999:00:00\n00:01:00\n\n\n-1\n", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, h.out.String(), "WARNING: ")
	assert.Contains(t, h.runner.args, "00:01:00")
	assert.NotContains(t, strings.Join(h.runner.args, " "), "-ss -")
}

func TestRunDeclined(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	h := newHarness(opts, "\n\n\n-1\nn\n", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Zero(t, h.runner.calls)
	assert.False(t, h.session.Executed())
	assert.Contains(t, h.out.String(), "ffmpeg command")
}

func TestRunDryRunSkipsConfirmAndExecution(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.DryRun = true
	h := newHarness(opts, "", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Zero(t, h.runner.calls)
	assert.False(t, h.session.Executed())
	assert.NotContains(t, h.out.String(), "Execute ffmpeg?")
}

func TestRunYesSkipsConfirm(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true
	h := newHarness(opts, "", movieTracks()...)

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, 1, h.runner.calls)
	assert.True(t, h.session.Executed())
	assert.NotContains(t, h.out.String(), "Execute ffmpeg?")
}

func TestRunCancelled(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true
	h := newHarness(opts, "", movieTracks()...)
	h.runner.result = process.Result{Outcome: process.OutcomeCancelled, ExitCode: 255}

	code, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.out.String(), BannerCancelled)
	assert.Equal(t, "cancelled", h.observer.finished[0].Outcome)
}

func TestRunFailed(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true
	h := newHarness(opts, "", movieTracks()...)
	h.runner.result = process.Result{Outcome: process.OutcomeFailed, ExitCode: 1}

	code, err := h.session.Run(context.Background(), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.out.String(), BannerFailed)
	assert.Equal(t, 1, h.observer.finished[0].ExitCode)
}

func TestRunReportsProgress(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true
	h := newHarness(opts, "", movieTracks()...)
	h.runner.lines = []string{"[warning] something odd", statsLine}

	_, err := h.session.Run(context.Background(), file)
	require.NoError(t, err)

	require.Len(t, h.observer.progress, 1)
	assert.Equal(t, 25.0, h.observer.progress[0].FPS)
	assert.Equal(t, int64(250), h.observer.progress[0].Frame)
	assert.Contains(t, h.out.String(), "\r"+statsLine)
}

func TestRunPublishesEvents(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	opts.Yes = true

	bus := events.New()
	started := make(chan events.SessionStartedEvent, 1)
	finished := make(chan events.SessionFinishedEvent, 1)
	defer bus.Subscribe(func(e events.SessionStartedEvent) { started <- e })()
	defer bus.Subscribe(func(e events.SessionFinishedEvent) { finished <- e })()

	runner := &fakeRunner{result: process.Result{Outcome: process.OutcomeSuccess}}
	s := NewSession(opts, prompt.New(strings.NewReader(""), &bytes.Buffer{}), fakeProber(movieTracks()...), runner,
		WithBus(bus), WithID("cast-bus"))

	_, err := s.Run(context.Background(), file)
	require.NoError(t, err)

	ev := <-started
	assert.Equal(t, "cast-bus", ev.SessionID)
	assert.Equal(t, "http://localhost:8000/stream.ogg", ev.PlaybackURL)
	assert.Equal(t, "success", (<-finished).Outcome)
}

func TestRunMissingFile(t *testing.T) {
	h := newHarness(config.DefaultOptions(), "", movieTracks()...)

	code, err := h.session.Run(context.Background(), filepath.Join(t.TempDir(), "nope.mkv"))
	assert.Equal(t, ExitFailure, code)
	assert.True(t, errors.Is(err, ErrMediaNotFound))

	_, err = h.session.Run(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoMediaFile))
}

func TestRunProbeFailure(t *testing.T) {
	file := mediaFile(t)
	probeErr := errors.New("ffprobe exploded")
	s := NewSession(config.DefaultOptions(), prompt.New(strings.NewReader(""), &bytes.Buffer{}),
		func(context.Context, string) (*media.Descriptor, error) { return nil, probeErr }, &fakeRunner{})

	_, err := s.Run(context.Background(), file)
	assert.True(t, errors.Is(err, probeErr))
}

func TestRunAudioOnlyFileFails(t *testing.T) {
	file := mediaFile(t)
	opts := config.DefaultOptions()
	opts.QualityPrompt = false
	h := newHarness(opts, "", media.Track{Index: 0, CodecName: "flac", Kind: media.KindAudio})

	code, err := h.session.Run(context.Background(), file)
	assert.Equal(t, ExitFailure, code)
	assert.True(t, errors.Is(err, ffmpeg.ErrTrackRequired))
	assert.Zero(t, h.runner.calls)
}
