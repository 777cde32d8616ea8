package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"captiondesk/internal/queue"
)

// AudioUpload is an audio blob to submit.
type AudioUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SubmissionMetadata is the metadata block returned with a submission.
type SubmissionMetadata struct {
	Tone           queue.Tone `json:"tone"`
	ProcessingTime float64    `json:"processing_time"`
	QueueID        queue.ID   `json:"queue_id"`
	SoundType      string     `json:"sound_type,omitempty"`
}

// SubmissionResult is the backend's answer to a submit call. Fields the
// backend omitted stay empty; callers decide whether that is acceptable.
type SubmissionResult struct {
	Transcription string             `json:"transcription,omitempty"`
	Caption       string             `json:"caption,omitempty"`
	Status        string             `json:"status,omitempty"`
	Message       string             `json:"message,omitempty"`
	Filename      string             `json:"filename,omitempty"`
	Metadata      SubmissionMetadata `json:"metadata"`
}

// UnmarshalJSON accepts the metadata envelope as well as the flat
// {text, caption, tone, filename} shape.
func (r *SubmissionResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Transcription *string             `json:"transcription"`
		Transcript    *string             `json:"transcript"`
		Text          *string             `json:"text"`
		Caption       string              `json:"caption"`
		Status        string              `json:"status"`
		Message       string              `json:"message"`
		Filename      string              `json:"filename"`
		Tone          queue.Tone          `json:"tone"`
		QueueID       queue.ID            `json:"queue_id"`
		Metadata      *SubmissionMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := SubmissionResult{
		Caption:  wire.Caption,
		Status:   wire.Status,
		Message:  wire.Message,
		Filename: wire.Filename,
	}
	switch {
	case wire.Transcription != nil:
		out.Transcription = *wire.Transcription
	case wire.Transcript != nil:
		out.Transcription = *wire.Transcript
	case wire.Text != nil:
		out.Transcription = *wire.Text
	}
	if wire.Metadata != nil {
		out.Metadata = *wire.Metadata
	}
	if out.Metadata.Tone == "" {
		out.Metadata.Tone = wire.Tone
	}
	if out.Metadata.QueueID == "" {
		out.Metadata.QueueID = wire.QueueID
	}
	*r = out
	return nil
}

// ItemUpdate carries the fields of a partial update. Nil fields are omitted.
type ItemUpdate struct {
	Caption       *string `json:"caption,omitempty"`
	Transcription *string `json:"transcription,omitempty"`
}

// MutationResult is the backend's answer to a queue mutation. Backends
// answer either with the updated record or with an acknowledgement.
type MutationResult struct {
	Item     *queue.Item
	Status   string
	Message  string
	TweetURL string
}

func decodeMutation(op string, body []byte) (MutationResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return MutationResult{}, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return MutationResult{}, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
	}
	if _, ok := probe["id"]; ok {
		var item queue.Item
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return MutationResult{}, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
		}
		return MutationResult{Item: &item, Status: string(item.Status)}, nil
	}
	var ack struct {
		Status   string      `json:"status"`
		Message  string      `json:"message"`
		TweetURL string      `json:"tweet_url"`
		Item     *queue.Item `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &ack); err != nil {
		return MutationResult{}, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
	}
	return MutationResult{Item: ack.Item, Status: ack.Status, Message: ack.Message, TweetURL: ack.TweetURL}, nil
}

// SystemStatus reports whether each backend dependency is up. Services the
// backend did not report are down and absent from Reported.
type SystemStatus struct {
	Whisper  bool
	GPT      bool
	Twitter  bool
	Database bool
	Reported []string
}

// StatusServices lists the dependencies in display order.
var StatusServices = []string{"whisper", "gpt", "twitter", "database"}

// UnmarshalJSON accepts booleans or up/down style strings per service.
func (s *SystemStatus) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if nested, ok := raw["services"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(nested, &inner) == nil {
			raw = inner
		}
	}
	out := SystemStatus{}
	for _, name := range StatusServices {
		value, ok := raw[name]
		if !ok {
			continue
		}
		up, known := serviceUp(value)
		if !known {
			continue
		}
		out.Reported = append(out.Reported, name)
		switch name {
		case "whisper":
			out.Whisper = up
		case "gpt":
			out.GPT = up
		case "twitter":
			out.Twitter = up
		case "database":
			out.Database = up
		}
	}
	*s = out
	return nil
}

// Up reports the state of a named service.
func (s SystemStatus) Up(name string) bool {
	switch name {
	case "whisper":
		return s.Whisper
	case "gpt":
		return s.GPT
	case "twitter":
		return s.Twitter
	case "database":
		return s.Database
	default:
		return false
	}
}

func serviceUp(raw json.RawMessage) (bool, bool) {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b, true
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "up", "ok", "healthy", "online", "true":
			return true, true
		case "down", "error", "unhealthy", "offline", "false":
			return false, true
		}
	}
	return false, false
}

// Analytics carries the backend's aggregate quality and volume metrics.
// Missing values are zero and absent from Reported.
type Analytics struct {
	Accuracy          float64
	AvgProcessTime    float64
	QualityScore      float64
	TotalSubmissions  int
	PendingItems      int
	PostsToday        int
	AvgProcessingTime float64
	Reported          []string
}

// UnmarshalJSON accepts camelCase and snake_case keys.
func (a *Analytics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Analytics{}
	number := func(name string, keys ...string) float64 {
		for _, key := range keys {
			value, ok := raw[key]
			if !ok {
				continue
			}
			var f float64
			if json.Unmarshal(value, &f) == nil {
				out.Reported = append(out.Reported, name)
				return f
			}
		}
		return 0
	}
	out.Accuracy = number("accuracy", "accuracy")
	out.AvgProcessTime = number("avg_process_time", "avgProcessTime", "avg_process_time")
	out.QualityScore = number("quality_score", "qualityScore", "quality_score")
	out.TotalSubmissions = int(number("total_submissions", "totalSubmissions", "total_submissions"))
	out.PendingItems = int(number("pending_items", "pendingItems", "pending_items"))
	out.PostsToday = int(number("posts_today", "postsToday", "posts_today"))
	out.AvgProcessingTime = number("avg_processing_time", "avgProcessingTime", "avg_processing_time")
	*a = out
	return nil
}

// ActivityEntry is one immutable line of recent backend activity.
type ActivityEntry struct {
	Action    string    `json:"action"`
	Timestamp string    `json:"timestamp"`
	Status    string    `json:"status"`
	Time      time.Time `json:"-"`
}

// ToneOption is a tone the backend offers for caption generation.
type ToneOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Settings is the backend's free-form settings document.
type Settings map[string]any

var activityLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseActivityTime(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeList accepts a bare JSON array or an object wrapping the array under
// one of keys.
func decodeList[T any](op string, body []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &Error{Op: op, Kind: KindDecode, Message: "empty response body"}
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
		}
		return items, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &Error{Op: op, Kind: KindDecode, Message: "malformed response body", Err: err}
		}
		return items, nil
	}
	return nil, &Error{Op: op, Kind: KindDecode, Message: "response is missing the list field"}
}
