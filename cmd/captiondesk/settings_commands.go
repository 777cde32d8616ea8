package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change backend settings",
	}
	settingsCmd.AddCommand(newSettingsGetCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "get [KEY...]",
		Short: "Show backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(s *session) error {
				settings, err := s.client.Settings(commandCtx(cmd))
				if err != nil {
					return err
				}
				if len(args) > 0 {
					selected := api.Settings{}
					for _, key := range args {
						value, ok := settings[key]
						if !ok {
							return fmt.Errorf("unknown setting %q", key)
						}
						selected[key] = value
					}
					settings = selected
				}
				if jsonMode {
					return writeJSON(cmd, settings)
				}
				renderSettings(cmd, settings)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON")
	return cmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Change backend settings",
		Long: "Change backend settings. VALUE is read as JSON when it parses\n" +
			"(true, 60, \"text\", [1,2]) and as a plain string otherwise.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseSettingAssignments(args)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				updated, err := s.client.UpdateSettings(commandCtx(cmd), changes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d setting(s)\n", len(changes))
				if len(updated) > 0 {
					renderSettings(cmd, updated)
				}
				return nil
			})
		},
	}
}

func parseSettingAssignments(args []string) (api.Settings, error) {
	changes := api.Settings{}
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected KEY=VALUE)", arg)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		changes[key] = value
	}
	return changes, nil
}

func renderSettings(cmd *cobra.Command, settings api.Settings) {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, settingValue(settings[key])})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{header: "Setting"}, {header: "Value", maxWidth: 60}}, rows))
}

func settingValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
