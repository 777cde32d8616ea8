package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/clipboard"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
	"captiondesk/internal/workflow"
)

type submitFlags struct {
	tone     string
	copy     bool
	jsonMode bool
}

func (f *submitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tone, "tone", "t", "", "Caption tone ("+joinTones()+"); defaults to the last tone used")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Copy the generated caption to the clipboard")
	cmd.Flags().BoolVar(&f.jsonMode, "json", false, "Output the result as JSON")
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit text or audio for captioning",
	}
	submitCmd.AddCommand(newSubmitTextCommand(ctx))
	submitCmd.AddCommand(newSubmitAudioCommand(ctx))
	return submitCmd
}

func newSubmitTextCommand(ctx *commandContext) *cobra.Command {
	var flags submitFlags
	cmd := &cobra.Command{
		Use:   "text TEXT...",
		Short: "Submit text for caption generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return ctx.withClient(cmd, func(s *session) error {
				return runSubmission(cmd, s, flags, func(wf *workflow.Workflow) error {
					return wf.SetText(text)
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSubmitAudioCommand(ctx *commandContext) *cobra.Command {
	var flags submitFlags
	cmd := &cobra.Command{
		Use:   "audio FILE",
		Short: "Upload an audio file for transcription and caption generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := workflow.LoadAudioFile(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				return runSubmission(cmd, s, flags, func(wf *workflow.Workflow) error {
					return wf.SetAudio(blob)
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// runSubmission drives one pass of the submission workflow: load input,
// submit, render the outcome.
func runSubmission(cmd *cobra.Command, s *session, flags submitFlags, load func(*workflow.Workflow) error) error {
	reqCtx := commandCtx(cmd)
	tone, err := resolveTone(reqCtx, s, flags.tone)
	if err != nil {
		return err
	}
	wf := workflow.New(workflow.Options{
		Submitter: s.client,
		Clipboard: clipboard.New(s.cfg.Clipboard.Command),
		Logger:    s.logger,
		Tone:      tone,
	})
	if err := load(wf); err != nil {
		return err
	}

	var progress api.ProgressFunc
	finish := func() {}
	if wf.Snapshot().Input == workflow.InputAudio && !flags.jsonMode {
		progress, finish = uploadProgress(cmd.ErrOrStderr(), "Uploading")
	}
	outcome, err := wf.Submit(reqCtx, progress)
	finish()
	if err != nil {
		return describeSubmitError(err)
	}
	rememberTone(reqCtx, s, tone)

	if flags.jsonMode {
		if err := writeJSON(cmd, outcomeJSON(outcome)); err != nil {
			return err
		}
	} else {
		renderOutcome(cmd.OutOrStdout(), outcome, shouldColorize(cmd.OutOrStdout()))
	}

	if flags.copy {
		if err := wf.CopyCaption(reqCtx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not copy caption: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Caption copied to clipboard.")
		}
	}
	return nil
}

func describeSubmitError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrEmptyInput):
		return errors.New("nothing to submit: provide text or an audio file")
	case errors.Is(err, textutil.ErrCaptionTooLong):
		return fmt.Errorf("text is too long: %w", err)
	default:
		return err
	}
}

type outcomeOutput struct {
	Status         string   `json:"status"`
	Input          string   `json:"input"`
	Transcription  string   `json:"transcription"`
	Caption        string   `json:"caption"`
	CaptionLength  int      `json:"caption_length"`
	Tone           string   `json:"tone"`
	QueueID        string   `json:"queue_id,omitempty"`
	ProcessingTime float64  `json:"processing_time"`
	Message        string   `json:"message,omitempty"`
	Missing        []string `json:"missing,omitempty"`
}

func outcomeJSON(o workflow.Outcome) outcomeOutput {
	return outcomeOutput{
		Status:         string(o.Kind),
		Input:          string(o.Input),
		Transcription:  o.Transcription,
		Caption:        o.Caption,
		CaptionLength:  textutil.CaptionLength(o.Caption),
		Tone:           string(o.Tone),
		QueueID:        o.QueueID.String(),
		ProcessingTime: o.ProcessingTime,
		Message:        o.Message,
		Missing:        o.Missing,
	}
}

func renderOutcome(w io.Writer, o workflow.Outcome, colorize bool) {
	for _, line := range renderSectionHeader("Result", colorize) {
		fmt.Fprintln(w, line)
	}
	if !o.Complete() {
		fmt.Fprintln(w, renderStatusLine("Result", statusWarn, "incomplete: backend did not return "+strings.Join(o.Missing, ", "), colorize))
		if o.Message != "" {
			fmt.Fprintf(w, "%s%s\n", statusIndent, o.Message)
		}
	}
	fmt.Fprintf(w, "Tone:          %s\n", badge(queue.ToneInfo(o.Tone), colorize))
	if o.QueueID != "" {
		fmt.Fprintf(w, "Queue ID:      %s\n", o.QueueID)
	}
	if o.ProcessingTime > 0 {
		fmt.Fprintf(w, "Processed in:  %.1fs\n", o.ProcessingTime)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transcription:")
	fmt.Fprintf(w, "  %s\n", orPlaceholder(o.Transcription, "(none returned)"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Caption (%s):\n", textutil.CaptionCounter(o.Caption))
	fmt.Fprintf(w, "  %s\n", orPlaceholder(o.Caption, "(none returned)"))
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
