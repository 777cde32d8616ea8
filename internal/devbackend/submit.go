package devbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

const maxUploadBytes = 32 << 20

type submitTextRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type submissionMetadata struct {
	Tone           queue.Tone `json:"tone"`
	ProcessingTime float64    `json:"processing_time"`
	QueueID        queue.ID   `json:"queue_id"`
	SoundType      string     `json:"sound_type,omitempty"`
}

type submissionResponse struct {
	Status        string             `json:"status"`
	Message       string             `json:"message"`
	Text          string             `json:"text,omitempty"`
	Transcription string             `json:"transcription,omitempty"`
	Caption       string             `json:"caption"`
	Filename      string             `json:"filename,omitempty"`
	Tone          queue.Tone         `json:"tone"`
	Metadata      submissionMetadata `json:"metadata"`
}

// replay answers a request whose idempotency key was already seen and
// reports whether it did so.
func (s *Server) replay(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		return "", false
	}
	s.mu.Lock()
	cached, ok := s.idempotency[key]
	s.mu.Unlock()
	if !ok {
		return key, false
	}
	s.logger.Debug("replaying submission", logging.String("idempotency_key", key))
	writeRaw(w, cached.status, cached.body)
	return key, true
}

func (s *Server) remember(key string, status int, payload any) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	if key != "" {
		s.mu.Lock()
		s.idempotency[key] = cachedResponse{status: status, body: body}
		s.mu.Unlock()
	}
	return body
}

func (s *Server) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	key, replayed := s.replay(w, r)
	if replayed {
		return
	}
	var req submitTextRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		req.Text = r.FormValue("text")
		req.Tone = r.FormValue("tone")
	}
	if err := textutil.ValidateCaption(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tone, ok := queue.ParseTone(req.Tone)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown tone: %s", req.Tone))
		return
	}

	started := s.now()
	item := s.addItem(queue.Item{
		Source:        queue.SourceText,
		Transcription: req.Text,
		Caption:       placeholderCaption(req.Text, tone),
		Tone:          tone,
		SoundType:     "text_entry",
	})
	resp := submissionResponse{
		Status:  "received",
		Message: "Text received and caption generated",
		Text:    req.Text,
		Caption: item.Caption,
		Tone:    tone,
		Metadata: submissionMetadata{
			Tone:           tone,
			ProcessingTime: s.now().Sub(started).Seconds(),
			QueueID:        item.ID,
			SoundType:      item.SoundType,
		},
	}
	writeRaw(w, http.StatusOK, s.remember(key, http.StatusOK, resp))
}

func (s *Server) handleSubmitAudio(w http.ResponseWriter, r *http.Request) {
	key, replayed := s.replay(w, r)
	if replayed {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if !textutil.IsValidAudioFile(header.Filename) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Supported types: .wav, .mp3, .ogg, .webm, .m4a")
		return
	}
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if size == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}
	tone, ok := queue.ParseTone(r.FormValue("tone"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown tone: %s", r.FormValue("tone")))
		return
	}

	started := s.now()
	filename := s.newID() + strings.ToLower(filepath.Ext(header.Filename))
	transcription := fmt.Sprintf("[no transcription in development backend: %s, %s]", header.Filename, textutil.FormatFileSize(size))
	item := s.addItem(queue.Item{
		Source:        queue.SourceAudio,
		Transcription: transcription,
		Caption:       placeholderCaption(header.Filename, tone),
		Tone:          tone,
		Filename:      filename,
		SoundType:     "unknown",
	})
	resp := submissionResponse{
		Status:        "received",
		Message:       "Audio received and caption generated",
		Transcription: transcription,
		Caption:       item.Caption,
		Filename:      filename,
		Tone:          tone,
		Metadata: submissionMetadata{
			Tone:           tone,
			ProcessingTime: s.now().Sub(started).Seconds(),
			QueueID:        item.ID,
			SoundType:      item.SoundType,
		},
	}
	writeRaw(w, http.StatusOK, s.remember(key, http.StatusOK, resp))
}

type toneResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	tones := queue.AllTones()
	out := make([]toneResponse, 0, len(tones))
	for _, tone := range tones {
		info := queue.ToneInfo(tone)
		out = append(out, toneResponse{ID: string(tone), Name: info.Label, Description: info.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func placeholderCaption(source string, tone queue.Tone) string {
	return textutil.Truncate(fmt.Sprintf("[%s placeholder] %s", tone, textutil.SingleLine(source)), textutil.MaxCaptionLength-3)
}

func (s *Server) addItem(item queue.Item) queue.Item {
	now := s.now().UTC().Truncate(time.Second)
	item.ID = queue.ID(s.newID())
	item.Status = queue.StatusPending
	item.CreatedAt = now
	item.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := item
	s.items = append(s.items, &stored)
	s.recordLocked(fmt.Sprintf("Submission %s received (%s)", item.ID, item.Source), "success")
	return item
}
