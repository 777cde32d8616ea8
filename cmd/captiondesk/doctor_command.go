package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the backend connection and local helper tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(s *session) error {
				reqCtx := commandCtx(cmd)
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Backend", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("URL", statusInfo, s.cfg.API.BaseURL, colorize))
				token, err := s.creds.Token(reqCtx)
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				if token == "" {
					fmt.Fprintln(out, renderStatusLine("Token", statusWarn, "none stored", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Token", statusOK, maskToken(token), colorize))
				}
				if _, err := s.client.SystemStatus(reqCtx); err != nil {
					fmt.Fprintln(out, renderStatusLine("Connection", statusError, api.Message(err), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Connection", statusOK, "reachable", colorize))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Local Tools", colorize) {
					fmt.Fprintln(out, line)
				}
				tools := deps.Check(deps.Tools{
					FFmpegCommand:    s.cfg.Recorder.FFmpegCommand,
					ClipboardCommand: s.cfg.Clipboard.Command,
				})
				for _, line := range dependencyLines(tools, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}

func dependencyLines(tools []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(tools)+1)
	missing := make([]string, 0)
	for _, dep := range tools {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, fmt.Sprintf("%s (%s)", dep.Name, strings.ToLower(dep.Description)))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}
