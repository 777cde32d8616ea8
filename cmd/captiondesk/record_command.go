package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"captiondesk/internal/logging"
	"captiondesk/internal/recorder"
	"captiondesk/internal/textutil"
	"captiondesk/internal/workflow"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var flags submitFlags
	var duration time.Duration
	var keep bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone and submit the audio",
		Long: "Record from the microphone with ffmpeg until Enter is pressed, the\n" +
			"duration elapses, or the configured maximum is reached, then submit\n" +
			"the recording for transcription and caption generation.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(s *session) error {
				limit := s.cfg.RecordingLimit()
				if duration > 0 && (limit <= 0 || duration < limit) {
					limit = duration
				}
				rec := recorder.New(recorder.Config{
					Command:     s.cfg.Recorder.FFmpegCommand,
					InputFormat: s.cfg.Recorder.InputFormat,
					InputDevice: s.cfg.Recorder.InputDevice,
					SampleRate:  s.cfg.Recorder.SampleRate,
					Channels:    s.cfg.Recorder.Channels,
					MaxDuration: limit,
					OutputDir:   s.cfg.Recorder.OutputDir,
					Format:      s.cfg.Recorder.Format,
				}, s.logger)

				recording, err := captureRecording(cmd, rec, limit)
				if err != nil {
					return err
				}
				stderr := cmd.ErrOrStderr()
				fmt.Fprintf(stderr, "Recorded %s (%s)\n",
					recording.Duration.Round(100*time.Millisecond), textutil.FormatFileSize(recording.Size))

				blob, err := workflow.LoadAudioFile(recording.Path)
				if err == nil {
					err = runSubmission(cmd, s, flags, func(wf *workflow.Workflow) error {
						if err := wf.BeginRecording(); err != nil {
							return err
						}
						return wf.SetAudio(blob)
					})
				}
				switch {
				case err != nil:
					fmt.Fprintf(stderr, "Recording kept at %s; retry with captiondesk submit audio %s\n", recording.Path, recording.Path)
				case keep:
					fmt.Fprintf(stderr, "Recording kept at %s\n", recording.Path)
				default:
					if rmErr := os.Remove(recording.Path); rmErr != nil {
						s.logger.Warn("remove recording failed", logging.String("path", recording.Path), logging.Error(rmErr))
					}
				}
				return err
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long (capped by recorder.max_seconds)")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the recording file after submitting")
	return cmd
}

// captureRecording runs one capture session until the operator presses
// Enter, the limit elapses, or the command is canceled.
func captureRecording(cmd *cobra.Command, rec *recorder.Recorder, limit time.Duration) (recorder.Recording, error) {
	reqCtx := commandCtx(cmd)
	session, err := rec.Start(reqCtx, "capture")
	if err != nil {
		return recorder.Recording{}, err
	}

	stderr := cmd.ErrOrStderr()
	if limit > 0 {
		fmt.Fprintf(stderr, "Recording (max %s). Press Enter to stop.\n", limit)
	} else {
		fmt.Fprintln(stderr, "Recording. Press Enter to stop.")
	}

	enter := make(chan struct{})
	go func() {
		reader := bufio.NewReader(cmd.InOrStdin())
		if _, err := reader.ReadString('\n'); err == nil {
			close(enter)
		}
	}()

	select {
	case <-enter:
	case <-session.Done():
	case <-reqCtx.Done():
		_, _ = session.Stop()
		_ = os.Remove(session.Path())
		return recorder.Recording{}, reqCtx.Err()
	}
	return session.Stop()
}
