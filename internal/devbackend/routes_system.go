package devbackend

import (
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"time"

	"captiondesk/internal/queue"
)

const activityLimit = 50

type statusResponse struct {
	Whisper  bool `json:"whisper"`
	GPT      bool `json:"gpt"`
	Twitter  bool `json:"twitter"`
	Database bool `json:"database"`
}

type analyticsResponse struct {
	Accuracy          float64 `json:"accuracy"`
	AvgProcessTime    float64 `json:"avgProcessTime"`
	QualityScore      float64 `json:"qualityScore"`
	TotalSubmissions  int     `json:"total_submissions"`
	PendingItems      int     `json:"pending_items"`
	PostsToday        int     `json:"posts_today"`
	AvgProcessingTime float64 `json:"avg_processing_time"`
}

// handleStatus reports the fake's own dependencies: there is no
// transcription, generation, or publishing service behind it.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Database: true})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	s.mu.Lock()
	resp := analyticsResponse{TotalSubmissions: len(s.items)}
	for _, item := range s.items {
		switch item.Status {
		case queue.StatusPending:
			resp.PendingItems++
		case queue.StatusPosted:
			if !item.UpdatedAt.Before(dayStart) {
				resp.PostsToday++
			}
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]activityRecord, 0, len(s.activity))
	for i := len(s.activity) - 1; i >= 0; i-- {
		out = append(out, s.activity[i])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := maps.Clone(s.settings)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	changes := map[string]any{}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	maps.Copy(s.settings, changes)
	out := maps.Clone(s.settings)
	s.recordLocked("Settings updated", "success")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// recordLocked appends to the bounded activity log; callers hold s.mu.
func (s *Server) recordLocked(action, status string) {
	s.activity = append(s.activity, activityRecord{
		Action:    action,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Status:    status,
	})
	if over := len(s.activity) - activityLimit; over > 0 {
		s.activity = append([]activityRecord(nil), s.activity[over:]...)
	}
}

func defaultSettings() map[string]any {
	return map[string]any{
		"default_tone":   string(queue.DefaultTone),
		"auto_approve":   false,
		"post_interval":  60,
		"caption_prefix": "",
	}
}
