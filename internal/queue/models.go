package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status represents the lifecycle of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPosted   Status = "posted"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusPosted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Source records how a submission's content originated.
type Source string

const (
	SourceAudio Source = "audio"
	SourceText  Source = "text"
	SourceSMS   Source = "sms"
)

// ID is the backend-assigned identifier of a submission. The backend may
// encode it as a JSON string or number; both decode to the same ID.
type ID string

// UnmarshalJSON accepts string and numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("queue id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric-looking identifiers as numbers so round trips
// preserve the backend's encoding.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// ParseID validates a user-supplied identifier.
func ParseID(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("invalid item id %q", value)
	}
	if strings.ContainsAny(trimmed, "/?#") {
		return "", fmt.Errorf("invalid item id %q", value)
	}
	return ID(trimmed), nil
}

// Item is the client-side copy of a queue submission.
type Item struct {
	ID            ID        `json:"id"`
	Source        Source    `json:"source,omitempty"`
	Transcription string    `json:"transcription,omitempty"`
	Caption       string    `json:"caption"`
	Tone          Tone      `json:"tone"`
	Status        Status    `json:"status"`
	Filename      string    `json:"filename,omitempty"`
	SoundType     string    `json:"sound_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// wireItem accepts the field spellings used by the different backend
// revisions: transcript and text_content were earlier names for the
// submitted or transcribed text.
type wireItem struct {
	ID            ID      `json:"id"`
	Source        Source  `json:"source"`
	Transcription *string `json:"transcription"`
	Transcript    *string `json:"transcript"`
	TextContent   *string `json:"text_content"`
	Caption       string  `json:"caption"`
	Tone          Tone    `json:"tone"`
	Status        string  `json:"status"`
	Filename      string  `json:"filename"`
	SoundType     string  `json:"sound_type"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// UnmarshalJSON decodes backend queue records.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	item := Item{
		ID:        w.ID,
		Source:    w.Source,
		Caption:   w.Caption,
		Tone:      w.Tone,
		Status:    Status(strings.ToLower(strings.TrimSpace(w.Status))),
		Filename:  w.Filename,
		SoundType: w.SoundType,
		CreatedAt: parseTimestamp(w.CreatedAt),
		UpdatedAt: parseTimestamp(w.UpdatedAt),
	}
	switch {
	case w.Transcription != nil:
		item.Transcription = *w.Transcription
	case w.Transcript != nil:
		item.Transcription = *w.Transcript
	case w.TextContent != nil:
		item.Transcription = *w.TextContent
	}
	if item.Source == "" {
		switch {
		case w.Filename != "" || w.Transcript != nil:
			item.Source = SourceAudio
		case w.TextContent != nil:
			item.Source = SourceText
		}
	}
	*i = item
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO forms Python
// backends emit; zone-less values are treated as UTC.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsTerminal reports whether no further lifecycle transition is possible.
func (i Item) IsTerminal() bool {
	return i.Status == StatusPosted
}
