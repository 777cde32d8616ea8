package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

// SubmitOption customizes a submit call.
type SubmitOption func(*submitOptions)

type submitOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey reuses key instead of generating a fresh one, so a
// resubmission of the same logical input can be recognized by the backend.
func WithIdempotencyKey(key string) SubmitOption {
	return func(o *submitOptions) {
		o.idempotencyKey = strings.TrimSpace(key)
	}
}

func resolveSubmitOptions(opts []SubmitOption) submitOptions {
	var resolved submitOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.idempotencyKey == "" {
		resolved.idempotencyKey = uuid.NewString()
	}
	return resolved
}

// SubmitAudio uploads an audio blob for transcription and caption generation.
// progress, when non-nil, receives monotonic percentages ending at 100.
func (c *Client) SubmitAudio(ctx context.Context, upload AudioUpload, tone queue.Tone, progress ProgressFunc, opts ...SubmitOption) (SubmissionResult, error) {
	const op = "submit audio"
	if len(upload.Data) == 0 {
		return SubmissionResult{}, errors.New("submit audio: audio is empty")
	}
	name := strings.TrimSpace(upload.FileName)
	if name == "" {
		name = "recording.webm"
	}
	contentType := upload.ContentType
	if contentType == "" {
		if detected, ok := textutil.AudioContentType(name); ok {
			contentType = detected
		} else {
			contentType = "application/octet-stream"
		}
	}
	if tone == "" {
		tone = queue.DefaultTone
	}
	options := resolveSubmitOptions(opts)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(name)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("submit audio: build form: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return SubmissionResult{}, fmt.Errorf("submit audio: build form: %w", err)
	}
	if err := writer.WriteField("tone", string(tone)); err != nil {
		return SubmissionResult{}, fmt.Errorf("submit audio: build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return SubmissionResult{}, fmt.Errorf("submit audio: build form: %w", err)
	}

	tracker := newProgressReader(&body, int64(body.Len()), progress)
	tracker.report(0)
	raw, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		segments:    []string{"submit", "audio"},
		body:        tracker,
		contentType: writer.FormDataContentType(),
		length:      tracker.total,
		headers:     map[string]string{headerIdempotent: options.idempotencyKey},
		afterSend:   func() { tracker.report(100) },
	})
	if err != nil {
		return SubmissionResult{}, err
	}
	var result SubmissionResult
	if err := decode(op, raw, &result); err != nil {
		return SubmissionResult{}, err
	}
	return result, nil
}

// SubmitText sends typed text for caption generation.
func (c *Client) SubmitText(ctx context.Context, text string, tone queue.Tone, opts ...SubmitOption) (SubmissionResult, error) {
	const op = "submit text"
	if tone == "" {
		tone = queue.DefaultTone
	}
	options := resolveSubmitOptions(opts)
	body, err := jsonBody(map[string]string{"text": text, "tone": string(tone)})
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("submit text: encode: %w", err)
	}
	raw, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		segments:    []string{"submit", "text"},
		body:        body,
		contentType: "application/json",
		headers:     map[string]string{headerIdempotent: options.idempotencyKey},
	})
	if err != nil {
		return SubmissionResult{}, err
	}
	var result SubmissionResult
	if err := decode(op, raw, &result); err != nil {
		return SubmissionResult{}, err
	}
	return result, nil
}

// Tones lists the caption tones the backend offers.
func (c *Client) Tones(ctx context.Context) ([]ToneOption, error) {
	const op = "list tones"
	raw, err := c.do(ctx, request{op: op, method: http.MethodGet, segments: []string{"submit", "tones"}})
	if err != nil {
		return nil, err
	}
	return decodeList[ToneOption](op, raw, "tones")
}
