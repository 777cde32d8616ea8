package queue

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tone selects the style of generated caption text. It is a generation
// parameter and cannot be changed after generation except by resubmitting.
type Tone string

const (
	ToneAuto       Tone = "auto"
	ToneMixed      Tone = "mixed"
	ToneCruel      Tone = "cruel"
	ToneClinical   Tone = "clinical"
	ToneTeasing    Tone = "teasing"
	TonePossessive Tone = "possessive"
)

// DefaultTone is attached to submissions when the operator picks none.
const DefaultTone = ToneAuto

var allTones = []Tone{ToneAuto, ToneMixed, ToneCruel, ToneClinical, ToneTeasing, TonePossessive}

// AllTones returns the ordered tone catalogue.
func AllTones() []Tone {
	cp := make([]Tone, len(allTones))
	copy(cp, allTones)
	return cp
}

// ParseTone converts a string into a known Tone. Empty input yields
// DefaultTone.
func ParseTone(value string) (Tone, bool) {
	normalized := Tone(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return DefaultTone, true
	}
	for _, t := range allTones {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// Display describes how a tone or status is presented.
type Display struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

var toneDisplay = map[Tone]Display{
	ToneAuto:       {Description: "Rotates between cruel, teasing, and possessive, with an occasional mixed caption", Color: "purple"},
	ToneMixed:      {Description: "Combines multiple tones", Color: "orange"},
	ToneCruel:      {Description: "Sharp and cutting", Color: "red"},
	ToneClinical:   {Description: "Cold, analytical, detached", Color: "blue"},
	ToneTeasing:    {Description: "Playful and mischievous", Color: "purple"},
	TonePossessive: {Description: "Claiming and intense", Color: "pink"},
}

// ToneInfo returns display metadata for a tone, falling back to auto for
// unknown values.
func ToneInfo(t Tone) Display {
	d, ok := toneDisplay[t]
	if !ok {
		t = ToneAuto
		d = toneDisplay[ToneAuto]
	}
	d.Label = displayLabel(string(t))
	return d
}

// StatusProcessing is a display-only pseudo status for items still being
// generated by the backend. It never participates in transitions.
const StatusProcessing Status = "processing"

var statusDisplay = map[Status]Display{
	StatusPending:    {Description: "Awaiting review", Color: "yellow"},
	StatusApproved:   {Description: "Ready to post", Color: "green"},
	StatusRejected:   {Description: "Will not be posted", Color: "red"},
	StatusPosted:     {Description: "Published", Color: "blue"},
	StatusProcessing: {Description: "Being processed", Color: "orange"},
}

// StatusInfo returns display metadata for a status, falling back to pending
// for unknown values.
func StatusInfo(s Status) Display {
	d, ok := statusDisplay[s]
	if !ok {
		s = StatusPending
		d = statusDisplay[StatusPending]
	}
	d.Label = displayLabel(string(s))
	return d
}

// displayLabel title-cases a catalogue key. Casers hold state, so each call
// builds its own.
func displayLabel(key string) string {
	return cases.Title(language.English).String(key)
}
