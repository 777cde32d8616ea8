package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"captiondesk/internal/api"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

// State is the position of a Workflow in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateComposing  State = "composing"
	StateReady      State = "ready"
	StateProcessing State = "processing"
	StateResult     State = "result"
)

// InputKind identifies which input a Workflow holds.
type InputKind string

const (
	InputNone  InputKind = ""
	InputText  InputKind = "text"
	InputAudio InputKind = "audio"
)

var (
	// ErrEmptyInput rejects a submit with no audio or whitespace-only text.
	ErrEmptyInput = errors.New("nothing to submit: input is empty")
	// ErrTextTooLong rejects text over the caption limit before any backend call.
	ErrTextTooLong = errors.New("submission text exceeds the caption limit")
	// ErrInFlight rejects a submit while another is processing.
	ErrInFlight = errors.New("a submission is already processing")
	// ErrInvalidState rejects an operation the current state does not offer.
	ErrInvalidState = errors.New("operation not available in the current state")
	// ErrNoResult rejects result operations before a result exists.
	ErrNoResult = errors.New("no result available")
	// ErrNoClipboard is returned by CopyCaption when no clipboard is wired.
	ErrNoClipboard = errors.New("clipboard is not configured")
)

func stateError(op string, state State) error {
	if state == StateProcessing {
		return ErrInFlight
	}
	return fmt.Errorf("%s while %s: %w", op, state, ErrInvalidState)
}

// AudioBlob is captured or loaded audio awaiting submission.
type AudioBlob struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (b AudioBlob) upload() api.AudioUpload {
	return api.AudioUpload{FileName: b.FileName, ContentType: b.ContentType, Data: b.Data}
}

// LoadAudioFile reads an audio file with an accepted extension.
func LoadAudioFile(path string) (AudioBlob, error) {
	contentType, ok := textutil.AudioContentType(path)
	if !ok {
		return AudioBlob{}, fmt.Errorf("unsupported audio file %q (accepted: wav, mp3, mpeg, ogg, opus, webm, m4a)", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AudioBlob{}, fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return AudioBlob{}, fmt.Errorf("read audio %s: %w", filepath.Base(path), ErrEmptyInput)
	}
	return AudioBlob{FileName: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

// OutcomeKind distinguishes complete results from incomplete ones.
type OutcomeKind string

const (
	// OutcomeComplete means every expected field was returned.
	OutcomeComplete OutcomeKind = "complete"
	// OutcomeIncomplete means the backend accepted the submission but omitted
	// fields; nothing is substituted for them.
	OutcomeIncomplete OutcomeKind = "incomplete"
)

// Outcome is the result of a resolved submission.
type Outcome struct {
	Kind           OutcomeKind
	Input          InputKind
	Transcription  string
	Caption        string
	Tone           queue.Tone
	QueueID        queue.ID
	ProcessingTime float64
	Message        string
	// Missing names the fields the backend did not return.
	Missing []string
}

// Complete reports whether every expected field is present.
func (o Outcome) Complete() bool {
	return o.Kind == OutcomeComplete
}

func buildOutcome(input InputKind, submittedText string, tone queue.Tone, res api.SubmissionResult) Outcome {
	out := Outcome{
		Input:          input,
		Transcription:  res.Transcription,
		Caption:        res.Caption,
		Tone:           res.Metadata.Tone,
		QueueID:        res.Metadata.QueueID,
		ProcessingTime: res.Metadata.ProcessingTime,
		Message:        res.Message,
	}
	if out.Tone == "" {
		out.Tone = tone
	}
	if input == InputText && strings.TrimSpace(out.Transcription) == "" {
		out.Transcription = submittedText
	}
	if strings.TrimSpace(out.Caption) == "" {
		out.Missing = append(out.Missing, "caption")
	}
	if input == InputAudio && strings.TrimSpace(out.Transcription) == "" {
		out.Missing = append(out.Missing, "transcription")
	}
	out.Kind = OutcomeComplete
	if len(out.Missing) > 0 {
		out.Kind = OutcomeIncomplete
	}
	return out
}

// CaptionStatus reports the length of an edited caption.
type CaptionStatus struct {
	Length    int
	OverLimit bool
	Counter   string
}

func captionStatus(text string) CaptionStatus {
	return CaptionStatus{
		Length:    textutil.CaptionLength(text),
		OverLimit: textutil.CaptionOverLimit(text),
		Counter:   textutil.CaptionCounter(text),
	}
}

// Snapshot is a copy of a Workflow's observable state.
type Snapshot struct {
	State          State
	Input          InputKind
	Text           string
	AudioName      string
	AudioSize      int
	Tone           queue.Tone
	IdempotencyKey string
	Outcome        *Outcome
	LastError      error
}
