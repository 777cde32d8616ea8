package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

type itemOutput struct {
	ID            string   `json:"id"`
	Source        string   `json:"source,omitempty"`
	Status        string   `json:"status"`
	Tone          string   `json:"tone"`
	Transcription string   `json:"transcription,omitempty"`
	Caption       string   `json:"caption"`
	CaptionLength int      `json:"caption_length"`
	OverLimit     bool     `json:"over_limit"`
	Filename      string   `json:"filename,omitempty"`
	SoundType     string   `json:"sound_type,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
	Actions       []string `json:"actions"`
}

func itemJSON(item queue.Item) itemOutput {
	actions := queue.AvailableActions(item.Status)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	out := itemOutput{
		ID:            item.ID.String(),
		Source:        string(item.Source),
		Status:        string(item.Status),
		Tone:          string(item.Tone),
		Transcription: item.Transcription,
		Caption:       item.Caption,
		CaptionLength: textutil.CaptionLength(item.Caption),
		OverLimit:     textutil.CaptionOverLimit(item.Caption),
		Filename:      item.Filename,
		SoundType:     item.SoundType,
		Actions:       names,
	}
	if !item.CreatedAt.IsZero() {
		out.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	return out
}

func itemsJSON(items []queue.Item) []itemOutput {
	out := make([]itemOutput, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON(item))
	}
	return out
}

// renderViewTabs shows each view with its size, marking the active one.
func renderViewTabs(p queue.Partition, active queue.View) string {
	parts := make([]string, 0, 4)
	for _, v := range queue.AllViews() {
		label := fmt.Sprintf("%s (%d)", v, len(p.View(v)))
		if v == active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func renderItemTable(items []queue.Item, colorize bool) string {
	now := time.Now()
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		caption := textutil.Truncate(textutil.SingleLine(item.Caption), 60)
		if textutil.CaptionOverLimit(item.Caption) {
			caption += " (over limit)"
		}
		created := "-"
		if !item.CreatedAt.IsZero() {
			created = textutil.FormatRelative(item.CreatedAt, now)
		}
		rows = append(rows, []string{
			item.ID.String(),
			badge(queue.StatusInfo(item.Status), colorize),
			badge(queue.ToneInfo(item.Tone), colorize),
			sourceLabel(item.Source),
			caption,
			created,
		})
	}
	return renderTable([]column{
		{header: "ID", align: alignRight},
		{header: "Status"},
		{header: "Tone"},
		{header: "Source"},
		{header: "Caption", maxWidth: 64},
		{header: "Created"},
	}, rows)
}

func renderItemDetail(w io.Writer, item queue.Item, colorize bool) {
	for _, line := range renderSectionHeader("Item "+item.ID.String(), colorize) {
		fmt.Fprintln(w, line)
	}
	status := queue.StatusInfo(item.Status)
	fmt.Fprintf(w, "Status:        %s (%s)\n", badge(status, colorize), status.Description)
	fmt.Fprintf(w, "Tone:          %s\n", badge(queue.ToneInfo(item.Tone), colorize))
	fmt.Fprintf(w, "Source:        %s\n", sourceLabel(item.Source))
	if item.Filename != "" {
		fmt.Fprintf(w, "File:          %s\n", item.Filename)
	}
	if item.SoundType != "" {
		fmt.Fprintf(w, "Sound type:    %s\n", item.SoundType)
	}
	if !item.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:       %s (%s)\n", textutil.FormatAbsolute(item.CreatedAt), textutil.FormatRelative(item.CreatedAt, time.Now()))
	}
	actions := queue.AvailableActions(item.Status)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	fmt.Fprintf(w, "Actions:       %s\n", strings.Join(names, ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transcription:")
	fmt.Fprintf(w, "  %s\n", orPlaceholder(item.Transcription, "(none)"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Caption (%s):\n", textutil.CaptionCounter(item.Caption))
	fmt.Fprintf(w, "  %s\n", orPlaceholder(item.Caption, "(none)"))
}

func sourceLabel(source queue.Source) string {
	switch source {
	case queue.SourceAudio:
		return "audio"
	case queue.SourceText:
		return "text"
	case queue.SourceSMS:
		return "sms"
	default:
		return "-"
	}
}
