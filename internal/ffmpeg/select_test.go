package ffmpeg

import (
	"errors"
	"testing"

	"github.com/smazurov/ffmcast/internal/media"
)

func TestSelectTrack(t *testing.T) {
	audio := []media.Track{
		{Index: 1, CodecName: "aac", Kind: media.KindAudio},
		{Index: 2, CodecName: "ac3", Kind: media.KindAudio},
	}

	tests := []struct {
		name      string
		choice    int
		fallback  Fallback
		wantOK    bool
		wantIndex int
		wantErr   error
	}{
		{"default first", -1, FallbackFirst, true, 1, nil},
		{"default none", -1, FallbackNone, false, 0, nil},
		{"first", 0, FallbackNone, true, 1, nil},
		{"second", 1, FallbackFirst, true, 2, nil},
		{"past end", 2, FallbackFirst, false, 0, ErrSelectionOutOfRange},
		{"below default", -2, FallbackFirst, false, 0, ErrSelectionOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := SelectTrack(audio, tt.choice, tt.fallback)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Index != tt.wantIndex {
				t.Errorf("selected stream #%d, want #%d", got.Index, tt.wantIndex)
			}
		})
	}
}

func TestSelectTrackEmptyCandidates(t *testing.T) {
	if _, ok, err := SelectTrack(nil, ChoiceDefault, FallbackFirst); err != nil || ok {
		t.Errorf("SelectTrack(nil, -1) = ok %v, err %v; want nothing selected", ok, err)
	}

	for _, choice := range []int{0, 5, -2} {
		_, ok, err := SelectTrack(nil, choice, FallbackFirst)
		if ok || !errors.Is(err, ErrSelectionOutOfRange) {
			t.Errorf("SelectTrack(nil, %d) = ok %v, err %v; want ErrSelectionOutOfRange", choice, ok, err)
		}
	}

	if _, err := SelectSubtitle([]media.Track{}, 7); !errors.Is(err, ErrSelectionOutOfRange) {
		t.Errorf("SelectSubtitle(empty, 7) error = %v, want ErrSelectionOutOfRange", err)
	}
}

func TestSelectSubtitle(t *testing.T) {
	subs := []media.Track{{Index: 4, CodecName: "subrip", Kind: media.KindSubtitle}}

	sub, err := SelectSubtitle(subs, -1)
	if err != nil {
		t.Fatalf("SelectSubtitle(-1) error: %v", err)
	}
	if _, ok := sub.Get(); ok {
		t.Error("SelectSubtitle(-1) selected a track, want none")
	}

	sub, err = SelectSubtitle(subs, 0)
	if err != nil {
		t.Fatalf("SelectSubtitle(0) error: %v", err)
	}
	if tr, ok := sub.Get(); !ok || tr.Index != 4 {
		t.Errorf("SelectSubtitle(0) = %v, %v; want stream #4", tr, ok)
	}

	if _, err = SelectSubtitle(subs, 1); !errors.Is(err, ErrSelectionOutOfRange) {
		t.Errorf("SelectSubtitle(1) error = %v, want ErrSelectionOutOfRange", err)
	}
}
