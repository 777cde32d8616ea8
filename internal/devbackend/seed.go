package devbackend

import (
	"time"

	"captiondesk/internal/queue"
)

// seed loads one item per non-terminal path so every queue view has content.
func (s *Server) seed() {
	now := s.now().UTC().Truncate(time.Second)
	samples := []queue.Item{
		{
			Source:        queue.SourceAudio,
			Filename:      "sample-clip-001.wav",
			Transcription: "Testing one two three, is this thing on",
			SoundType:     "speech",
			Caption:       "Mic check complete. The queue is listening.",
			Tone:          queue.ToneAuto,
			Status:        queue.StatusPending,
		},
		{
			Source:        queue.SourceAudio,
			Filename:      "sample-clip-002.ogg",
			Transcription: "Second take, a little louder this time",
			SoundType:     "speech",
			Caption:       "Take two, now with feeling.",
			Tone:          queue.ToneTeasing,
			Status:        queue.StatusApproved,
		},
		{
			Source:        queue.SourceText,
			Transcription: "A typed note for the archive",
			Caption:       "Filed for posterity.",
			Tone:          queue.ToneClinical,
			Status:        queue.StatusPosted,
		},
		{
			Source:        queue.SourceSMS,
			Transcription: "sent from a phone",
			Caption:       "Texted in, turned down.",
			Tone:          queue.ToneMixed,
			Status:        queue.StatusRejected,
		},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sample := range samples {
		item := sample
		item.ID = queue.ID(s.newID())
		item.CreatedAt = now.Add(-time.Duration(len(samples)-i) * time.Hour)
		item.UpdatedAt = item.CreatedAt
		s.items = append(s.items, &item)
	}
	s.recordLocked("Development backend seeded", "success")
}
