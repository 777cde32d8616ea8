package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"captiondesk/internal/api"
	"captiondesk/internal/clipboard"
	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

// Submitter is the slice of the API client a Workflow needs.
type Submitter interface {
	SubmitText(ctx context.Context, text string, tone queue.Tone, opts ...api.SubmitOption) (api.SubmissionResult, error)
	SubmitAudio(ctx context.Context, upload api.AudioUpload, tone queue.Tone, progress api.ProgressFunc, opts ...api.SubmitOption) (api.SubmissionResult, error)
}

// Options configures a Workflow.
type Options struct {
	Submitter Submitter
	Clipboard clipboard.Writer
	Logger    *slog.Logger
	Tone      queue.Tone
	// NewKey generates idempotency keys. Defaults to random UUIDs.
	NewKey func() string
}

// Workflow is the submission state machine. It is safe for concurrent use.
type Workflow struct {
	submitter Submitter
	clipboard clipboard.Writer
	logger    *slog.Logger
	newKey    func() string

	mu      sync.Mutex
	state   State
	input   InputKind
	text    string
	audio   AudioBlob
	tone    queue.Tone
	key     string
	outcome *Outcome
	lastErr error
}

// New returns an idle Workflow.
func New(opts Options) *Workflow {
	tone := opts.Tone
	if tone == "" {
		tone = queue.DefaultTone
	}
	newKey := opts.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &Workflow{
		submitter: opts.Submitter,
		clipboard: opts.Clipboard,
		logger:    logging.NewComponentLogger(opts.Logger, "workflow"),
		newKey:    newKey,
		state:     StateIdle,
		tone:      tone,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a copy of the observable state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		State:          w.state,
		Input:          w.input,
		Text:           w.text,
		AudioName:      w.audio.FileName,
		AudioSize:      len(w.audio.Data),
		Tone:           w.tone,
		IdempotencyKey: w.key,
		LastError:      w.lastErr,
	}
	if w.outcome != nil {
		out := *w.outcome
		out.Missing = append([]string(nil), w.outcome.Missing...)
		snap.Outcome = &out
	}
	return snap
}

// BeginRecording marks the start of audio capture.
func (w *Workflow) BeginRecording() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdle, StateComposing:
	default:
		return stateError("begin recording", w.state)
	}
	if w.input != InputAudio {
		w.resetInputLocked()
		w.input = InputAudio
	}
	w.state = StateComposing
	return nil
}

// SetText replaces the input with typed text.
func (w *Workflow) SetText(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked("set text"); err != nil {
		return err
	}
	if w.input != InputText || w.text != text {
		w.resetInputLocked()
		w.input = InputText
		w.text = text
	}
	w.state = StateComposing
	if strings.TrimSpace(text) != "" {
		w.state = StateReady
	}
	return nil
}

// SetAudio replaces the input with an audio blob.
func (w *Workflow) SetAudio(blob AudioBlob) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked("set audio"); err != nil {
		return err
	}
	w.resetInputLocked()
	w.input = InputAudio
	w.audio = AudioBlob{
		FileName:    blob.FileName,
		ContentType: blob.ContentType,
		Data:        append([]byte(nil), blob.Data...),
	}
	w.state = StateComposing
	if len(blob.Data) > 0 {
		w.state = StateReady
	}
	return nil
}

// SetTone selects the tone attached at submit time. Changing it starts a new
// logical submission.
func (w *Workflow) SetTone(tone queue.Tone) error {
	parsed, ok := queue.ParseTone(string(tone))
	if !ok {
		return fmt.Errorf("unknown tone %q", tone)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateProcessing {
		return ErrInFlight
	}
	if parsed != w.tone {
		w.tone = parsed
		w.key = ""
	}
	return nil
}

func (w *Workflow) editableLocked(op string) error {
	switch w.state {
	case StateIdle, StateComposing, StateReady:
		return nil
	default:
		return stateError(op, w.state)
	}
}

func (w *Workflow) resetInputLocked() {
	w.input = InputNone
	w.text = ""
	w.audio = AudioBlob{}
	w.key = ""
	w.lastErr = nil
}

// Submit sends the current input. Validation failures return without a
// backend call and leave the state unchanged. A backend failure returns the
// Workflow to ready with the input kept for resubmission.
func (w *Workflow) Submit(ctx context.Context, progress api.ProgressFunc) (Outcome, error) {
	w.mu.Lock()
	if w.state == StateProcessing {
		w.mu.Unlock()
		return Outcome{}, ErrInFlight
	}
	if w.state == StateResult {
		w.mu.Unlock()
		return Outcome{}, stateError("submit", StateResult)
	}
	if err := w.validateLocked(); err != nil {
		w.mu.Unlock()
		w.logger.Warn("submission rejected",
			logging.String(logging.FieldEventType, "submission_invalid"),
			logging.Error(err),
		)
		return Outcome{}, err
	}
	if w.key == "" {
		w.key = w.newKey()
	}
	w.state = StateProcessing
	w.lastErr = nil
	input, text, audio, tone, key := w.input, w.text, w.audio, w.tone, w.key
	w.mu.Unlock()

	logger := w.logger.With(
		logging.String("input", string(input)),
		logging.String("tone", string(tone)),
		logging.String(logging.FieldCorrelationID, key),
	)
	logger.Info("submission started")
	start := time.Now()

	var (
		res api.SubmissionResult
		err error
	)
	ctx = logging.WithCorrelationID(ctx, key)
	if w.submitter == nil {
		err = fmt.Errorf("submit: %w", ErrInvalidState)
	} else if input == InputText {
		res, err = w.submitter.SubmitText(ctx, text, tone, api.WithIdempotencyKey(key))
	} else {
		res, err = w.submitter.SubmitAudio(ctx, audio.upload(), tone, progress, api.WithIdempotencyKey(key))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateReady
		w.lastErr = err
		logger.Warn("submission failed",
			logging.Duration("duration", time.Since(start)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "submission_failed"),
			logging.String(logging.FieldErrorHint, "input kept; submit again to retry"),
		)
		return Outcome{}, err
	}

	outcome := buildOutcome(input, text, tone, res)
	w.outcome = &outcome
	w.state = StateResult
	logger.Info("submission finished",
		logging.Duration("duration", time.Since(start)),
		logging.String("outcome", string(outcome.Kind)),
		logging.String("queue_id", outcome.QueueID.String()),
	)
	if !outcome.Complete() {
		logging.WarnWithContext(logger, "submission result incomplete", "submission_incomplete",
			logging.String("missing", strings.Join(outcome.Missing, ",")),
			logging.String(logging.FieldImpact, "result shown without the missing fields"),
		)
	}
	return outcome, nil
}

func (w *Workflow) validateLocked() error {
	switch w.input {
	case InputText:
		if strings.TrimSpace(w.text) == "" {
			return ErrEmptyInput
		}
		if textutil.CaptionOverLimit(w.text) {
			return fmt.Errorf("%w: %w", ErrTextTooLong, textutil.ValidateCaption(w.text))
		}
		return nil
	case InputAudio:
		if len(w.audio.Data) == 0 {
			return ErrEmptyInput
		}
		return nil
	default:
		return ErrEmptyInput
	}
}

// Outcome returns the current result.
func (w *Workflow) Outcome() (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateResult || w.outcome == nil {
		return Outcome{}, ErrNoResult
	}
	return *w.outcome, nil
}

// EditCaption replaces the caption of the current result and reports its
// length. Over-limit captions are kept and flagged; the limit is enforced
// when the caption is saved to the queue.
func (w *Workflow) EditCaption(caption string) (CaptionStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateResult || w.outcome == nil {
		return CaptionStatus{}, ErrNoResult
	}
	w.outcome.Caption = caption
	return captionStatus(caption), nil
}

// EditTranscription replaces the transcription of the current result.
func (w *Workflow) EditTranscription(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateResult || w.outcome == nil {
		return ErrNoResult
	}
	w.outcome.Transcription = text
	return nil
}

// CopyCaption writes the current caption to the clipboard.
func (w *Workflow) CopyCaption(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateResult || w.outcome == nil {
		w.mu.Unlock()
		return ErrNoResult
	}
	caption := w.outcome.Caption
	w.mu.Unlock()
	if strings.TrimSpace(caption) == "" {
		return fmt.Errorf("copy caption: %w", textutil.ErrCaptionEmpty)
	}
	if w.clipboard == nil {
		return ErrNoClipboard
	}
	return w.clipboard.Copy(ctx, caption)
}

// Clear discards input and result and returns to idle. It never contacts
// the backend. The selected tone is kept.
func (w *Workflow) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateProcessing {
		return ErrInFlight
	}
	w.resetInputLocked()
	w.outcome = nil
	w.state = StateIdle
	return nil
}
