package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"captiondesk/internal/api"
	"captiondesk/internal/textutil"
)

const stallReportAfter = 2 * time.Second

// uploadProgress returns a progress callback drawing a bar on w. When w is
// not a terminal it falls back to stall reports. finish clears the bar.
func uploadProgress(w io.Writer, label string) (api.ProgressFunc, func()) {
	if !shouldColorize(w) {
		return stalledUploadReporter(w, label, stallReportAfter)
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(percent int) {
			_ = bar.Set(percent)
		}, func() {
			_ = bar.Finish()
		}
}

// stalledUploadReporter prints the upload percentage only after progress has
// paused for wait, so logs show where a slow upload sits without a line per
// chunk.
func stalledUploadReporter(w io.Writer, label string, wait time.Duration) (api.ProgressFunc, func()) {
	report := textutil.Debounce(func(percent int) {
		if percent >= 100 {
			fmt.Fprintf(w, "%s: sent, waiting for the backend\n", label)
			return
		}
		fmt.Fprintf(w, "%s: %d%%\n", label, percent)
	}, wait)
	return report.Trigger, func() { report.Stop() }
}
