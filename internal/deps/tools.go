package deps

import (
	"fmt"
	"strings"

	"captiondesk/internal/clipboard"
)

// Tools describes the helper commands resolved from configuration.
type Tools struct {
	FFmpegCommand    string
	ClipboardCommand string
}

// Check reports the recorder and clipboard helpers. Both are optional: only
// `record` needs ffmpeg and only `--copy` needs a clipboard helper.
func Check(tools Tools) []Status {
	ffmpeg := strings.TrimSpace(tools.FFmpegCommand)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	results := CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     firstField(ffmpeg),
		Description: "Microphone capture for record",
		Optional:    true,
	}})
	return append(results, CheckClipboard(tools.ClipboardCommand))
}

// CheckClipboard reports the helper clipboard.Copy would run: the override
// when set, otherwise the first known helper on PATH.
func CheckClipboard(override string) Status {
	const name, description = "Clipboard", "Copies captions with --copy"
	if cmd := firstField(override); cmd != "" {
		return CheckBinaries([]Requirement{{Name: name, Command: cmd, Description: description, Optional: true}})[0]
	}
	helpers := clipboard.Helpers()
	for _, helper := range helpers {
		if _, err := lookPath(helper); err == nil {
			return Status{Name: name, Command: helper, Description: description, Optional: true, Available: true}
		}
	}
	return Status{
		Name:        name,
		Description: description,
		Optional:    true,
		Detail:      fmt.Sprintf("none of %s found", strings.Join(helpers, ", ")),
	}
}

func firstField(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
