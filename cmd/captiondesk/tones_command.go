package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/queue"
	"captiondesk/internal/storage"
)

func newTonesCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "tones",
		Short: "List caption tones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(s *session) error {
				reqCtx := commandCtx(cmd)
				var tones []api.ToneOption
				if !offline {
					fetched, err := s.client.Tones(reqCtx)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Backend tones unavailable (%s); showing the built-in list\n", api.Message(err))
					}
					tones = fetched
				}
				if len(tones) == 0 {
					tones = builtinTones()
				}
				if jsonMode {
					return writeJSON(cmd, tones)
				}
				var last string
				_, _ = s.store.Get(reqCtx, storage.KeyLastTone, &last)
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(tones))
				for _, tone := range tones {
					name := tone.Name
					if name == "" {
						name = queue.ToneInfo(queue.Tone(tone.ID)).Label
					}
					marker := ""
					if tone.ID == last {
						marker = "last used"
					}
					rows = append(rows, []string{
						tone.ID,
						badge(queue.Display{Label: name, Color: queue.ToneInfo(queue.Tone(tone.ID)).Color}, colorize),
						tone.Description,
						marker,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
					{header: "ID"},
					{header: "Name"},
					{header: "Description", maxWidth: 60},
					{header: ""},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Show the built-in tone list without contacting the backend")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON")
	return cmd
}

func builtinTones() []api.ToneOption {
	tones := queue.AllTones()
	out := make([]api.ToneOption, 0, len(tones))
	for _, tone := range tones {
		info := queue.ToneInfo(tone)
		out = append(out, api.ToneOption{ID: string(tone), Name: info.Label, Description: info.Description})
	}
	return out
}
