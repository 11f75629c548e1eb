package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/smazurov/ffmcast/internal/media"
	"github.com/spf13/cobra"
)

// newProbeCmd creates the probe command.
func newProbeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe [mediafile]",
		Short: "List the tracks of a media file",
		Long:  `Runs ffprobe on a media file and prints its duration and the video, audio and subtitle tracks ffmcast can select.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			desc, err := a.prober(c.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(desc)
			}
			printDescriptor(a, desc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the probe result as JSON")
	return cmd
}

func printDescriptor(a *app, desc *media.Descriptor) {
	fmt.Fprintf(a.out, "%s\nduration: %s\n", desc.Filename, desc.Duration)

	sections := []struct {
		title  string
		tracks []media.Track
	}{
		{"video", desc.Video},
		{"audio", desc.Audio},
		{"subtitles", desc.Subtitles},
	}
	for _, s := range sections {
		fmt.Fprintf(a.out, "\n%s (%d)\n", s.title, len(s.tracks))
		for i, t := range s.tracks {
			fmt.Fprintf(a.out, " %d: %s\n", i, t)
		}
	}
}
