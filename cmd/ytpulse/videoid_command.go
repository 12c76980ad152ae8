package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytpulse/internal/comments"
)

type videoIDOutput struct {
	VideoID      string `json:"videoId"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

func newVideoIDCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "video-id <url|id>",
		Short:       "Extract the video id from a YouTube link",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := comments.ExtractVideoID(args[0])
			if !ok {
				return fmt.Errorf("no video id found in %q", args[0])
			}
			if jsonOut {
				return writeJSON(cmd, videoIDOutput{
					VideoID:      id,
					VideoURL:     comments.WatchURL(id),
					ThumbnailURL: comments.ThumbnailURL(id, "hqdefault"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print id, watch URL and thumbnail as JSON")
	return cmd
}
