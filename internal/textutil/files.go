package textutil

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var audioExtensions = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "audio/webm",
	".m4a":  "audio/m4a",
}

// FormatFileSize renders a byte count with binary units ("1.5 KiB").
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// AudioContentType returns the MIME type for a supported audio file name and
// whether the extension is accepted for upload.
func AudioContentType(name string) (string, bool) {
	ct, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// IsValidAudioFile reports whether name has an accepted audio extension.
func IsValidAudioFile(name string) bool {
	_, ok := AudioContentType(name)
	return ok
}

// RecordingFileName builds a filesystem-safe name for a new recording.
func RecordingFileName(label string, at time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "ogg"
	}
	return "recording-" + SanitizeToken(label) + "-" + at.UTC().Format("20060102T150405") + "." + ext
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
