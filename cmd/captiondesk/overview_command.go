package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/logging"
	"captiondesk/internal/overview"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

func newOverviewCommand(ctx *commandContext) *cobra.Command {
	var watch time.Duration
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show backend health, analytics, recent activity, and queue counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watchSet := cmd.Flags().Changed("watch")
			return ctx.withClient(cmd, func(s *session) error {
				agg := overview.New(overview.Options{
					Source:        s.client,
					Logger:        s.logger,
					ActivityLimit: s.cfg.Overview.ActivityLimit,
				})
				out := cmd.OutOrStdout()
				if !watchSet {
					snap := agg.Fetch(commandCtx(cmd))
					if jsonMode {
						return writeJSON(cmd, overviewJSON(snap))
					}
					renderOverview(out, snap, time.Now(), shouldColorize(out))
					return nil
				}

				interval := watch
				if interval <= 0 {
					interval = s.cfg.WatchInterval()
				}
				watchCtx, cancel := context.WithCancel(commandCtx(cmd))
				defer cancel()
				var writeErr error
				err := agg.Watch(watchCtx, interval, func(snap overview.Snapshot) {
					if !jsonMode {
						renderOverview(out, snap, time.Now(), shouldColorize(out))
						return
					}
					if err := writeJSONLine(out, overviewJSON(snap)); err != nil {
						s.logger.Warn("overview output failed; stopping watch",
							logging.String(logging.FieldEventType, "overview_write_failed"),
							logging.Error(err),
						)
						writeErr = fmt.Errorf("write overview: %w", err)
						cancel()
					}
				})
				if writeErr != nil {
					return writeErr
				}
				if err != nil && watchCtx.Err() != nil {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "Refresh on this interval until interrupted; 0 uses overview.watch_interval_seconds")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON (one object per line with --watch)")
	return cmd
}

func renderOverview(w io.Writer, snap overview.Snapshot, now time.Time, colorize bool) {
	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(w, line)
	}
	if err, failed := snap.Failures[overview.SectionStatus]; failed {
		fmt.Fprintln(w, renderStatusLine("Status", statusWarn, "unavailable: "+api.Message(err), colorize))
	}
	for _, name := range api.StatusServices {
		kind := statusError
		if snap.Status.Up(name) {
			kind = statusOK
		}
		fmt.Fprintln(w, renderStatusLine(serviceLabel(name), kind, "", colorize))
	}

	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Analytics", colorize) {
		fmt.Fprintln(w, line)
	}
	if err, failed := snap.Failures[overview.SectionAnalytics]; failed {
		fmt.Fprintln(w, renderStatusLine("Analytics", statusWarn, "unavailable: "+api.Message(err), colorize))
	}
	a := snap.Analytics
	fmt.Fprintf(w, "%sAccuracy:            %.0f%%\n", statusIndent, percent(a.Accuracy))
	fmt.Fprintf(w, "%sAvg process time:    %.1fs\n", statusIndent, a.AvgProcessTime)
	fmt.Fprintf(w, "%sQuality score:       %.1f\n", statusIndent, a.QualityScore)
	fmt.Fprintf(w, "%sTotal submissions:   %s\n", statusIndent, humanize.Comma(int64(a.TotalSubmissions)))
	fmt.Fprintf(w, "%sPosts today:         %s\n", statusIndent, humanize.Comma(int64(a.PostsToday)))

	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Queue", colorize) {
		fmt.Fprintln(w, line)
	}
	if err, failed := snap.Failures[overview.SectionQueue]; failed {
		fmt.Fprintln(w, renderStatusLine("Queue", statusWarn, "unavailable: "+api.Message(err), colorize))
	}
	for _, status := range queue.AllStatuses() {
		fmt.Fprintf(w, "%s%-20s %s\n", statusIndent, badge(queue.StatusInfo(status), colorize)+":", humanize.Comma(int64(snap.Counts[status])))
	}

	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Recent Activity", colorize) {
		fmt.Fprintln(w, line)
	}
	if err, failed := snap.Failures[overview.SectionActivity]; failed {
		fmt.Fprintln(w, renderStatusLine("Activity", statusWarn, "unavailable: "+api.Message(err), colorize))
	}
	if len(snap.Activity) == 0 {
		fmt.Fprintf(w, "%sNo recent activity.\n", statusIndent)
		return
	}
	rows := make([][]string, 0, len(snap.Activity))
	for _, entry := range snap.Activity {
		when := entry.Timestamp
		if !entry.Time.IsZero() {
			when = textutil.FormatRelative(entry.Time, now)
		}
		rows = append(rows, []string{when, entry.Action, entry.Status})
	}
	fmt.Fprintln(w, renderTable([]column{
		{header: "When"},
		{header: "Action", maxWidth: 60},
		{header: "Status"},
	}, rows))
}

// percent accepts both fractions (0.94) and percentages (94).
func percent(value float64) float64 {
	if value > 0 && value <= 1 {
		return value * 100
	}
	return value
}

func serviceLabel(name string) string {
	switch name {
	case "whisper":
		return "Transcription"
	case "gpt":
		return "Caption model"
	case "twitter":
		return "Publishing"
	case "database":
		return "Database"
	default:
		return name
	}
}

type overviewOutput struct {
	Status    map[string]bool   `json:"status"`
	Analytics analyticsOutput   `json:"analytics"`
	Activity  []activityOutput  `json:"activity"`
	Counts    map[string]int    `json:"counts"`
	Failures  map[string]string `json:"failures,omitempty"`
	FetchedAt string            `json:"fetched_at"`
}

type analyticsOutput struct {
	Accuracy          float64 `json:"accuracy"`
	AvgProcessTime    float64 `json:"avg_process_time"`
	QualityScore      float64 `json:"quality_score"`
	TotalSubmissions  int     `json:"total_submissions"`
	PendingItems      int     `json:"pending_items"`
	PostsToday        int     `json:"posts_today"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
}

type activityOutput struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

func overviewJSON(snap overview.Snapshot) overviewOutput {
	out := overviewOutput{
		Status: make(map[string]bool, len(api.StatusServices)),
		Analytics: analyticsOutput{
			Accuracy:          snap.Analytics.Accuracy,
			AvgProcessTime:    snap.Analytics.AvgProcessTime,
			QualityScore:      snap.Analytics.QualityScore,
			TotalSubmissions:  snap.Analytics.TotalSubmissions,
			PendingItems:      snap.Analytics.PendingItems,
			PostsToday:        snap.Analytics.PostsToday,
			AvgProcessingTime: snap.Analytics.AvgProcessingTime,
		},
		Activity:  make([]activityOutput, 0, len(snap.Activity)),
		Counts:    make(map[string]int, len(snap.Counts)),
		FetchedAt: snap.FetchedAt.Format(time.RFC3339),
	}
	for _, name := range api.StatusServices {
		out.Status[name] = snap.Status.Up(name)
	}
	for _, entry := range snap.Activity {
		out.Activity = append(out.Activity, activityOutput{Action: entry.Action, Timestamp: entry.Timestamp, Status: entry.Status})
	}
	for status, n := range snap.Counts {
		out.Counts[string(status)] = n
	}
	if len(snap.Failures) > 0 {
		out.Failures = make(map[string]string, len(snap.Failures))
		for section, err := range snap.Failures {
			out.Failures[string(section)] = api.Message(err)
		}
	}
	return out
}
