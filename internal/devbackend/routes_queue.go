package devbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

type queueResponse struct {
	Queue []queue.Item `json:"queue"`
	Count int          `json:"count"`
}

type ackResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	TweetURL string `json:"tweet_url,omitempty"`
}

type updateRequest struct {
	Caption       *string `json:"caption"`
	Transcription *string `json:"transcription"`
}

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("status"))
	s.mu.Lock()
	items := make([]queue.Item, 0, len(s.items))
	for _, item := range s.items {
		if filter != "" && string(item.Status) != filter {
			continue
		}
		items = append(items, *item)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, queueResponse{Queue: items, Count: len(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	item, _ := s.findLocked(id)
	var out queue.Item
	if item != nil {
		out = *item
	}
	s.mu.Unlock()
	if item == nil {
		writeError(w, http.StatusNotFound, notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateRequest
	if caption := r.URL.Query().Get("caption"); caption != "" {
		req.Caption = &caption
	} else if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Caption != nil {
		if err := textutil.ValidateCaption(*req.Caption); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, _ := s.findLocked(id)
	if item == nil {
		writeError(w, http.StatusNotFound, notFound(id))
		return
	}
	if req.Caption != nil {
		item.Caption = *req.Caption
	}
	if req.Transcription != nil {
		item.Transcription = *req.Transcription
	}
	item.UpdatedAt = s.now().UTC()
	s.recordLocked(fmt.Sprintf("Item %s updated", id), "success")
	writeJSON(w, http.StatusOK, *item)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	action := queue.Action(vars["action"])
	target, _ := queue.TargetStatus(action)

	s.mu.Lock()
	defer s.mu.Unlock()
	item, _ := s.findLocked(id)
	if item == nil {
		writeError(w, http.StatusNotFound, notFound(id))
		return
	}
	if !queue.Allows(action, item.Status) {
		s.recordLocked(fmt.Sprintf("Item %s %s refused", id, action), "error")
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Cannot %s item %s (current status: %s)", action, id, item.Status))
		return
	}
	if err := queue.CheckTransition(item.ID, item.Status, target); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.Status = target
	item.UpdatedAt = s.now().UTC()

	resp := ackResponse{Status: "success"}
	switch action {
	case queue.ActionApprove:
		resp.Message = fmt.Sprintf("Item %s approved", id)
	case queue.ActionReject:
		resp.Message = fmt.Sprintf("Item %s rejected", id)
	case queue.ActionPost:
		resp.Message = fmt.Sprintf("Item %s marked as posted (development backend does not publish)", id)
		resp.TweetURL = "https://example.invalid/status/" + id
	}
	s.recordLocked(resp.Message, "success")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	item, idx := s.findLocked(id)
	if item == nil {
		writeError(w, http.StatusNotFound, notFound(id))
		return
	}
	if item.Status == queue.StatusPosted {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Cannot delete posted item %s", id))
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.recordLocked(fmt.Sprintf("Item %s deleted", id), "success")
	writeJSON(w, http.StatusOK, ackResponse{Status: "success", Message: fmt.Sprintf("Item %s deleted", id)})
}

func (s *Server) findLocked(id string) (*queue.Item, int) {
	for i, item := range s.items {
		if string(item.ID) == id {
			return item, i
		}
	}
	return nil, -1
}

func notFound(id string) string {
	return fmt.Sprintf("Queue item %s not found", id)
}
