package textutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxCaptionLength is the post length limit enforced on captions.
const MaxCaptionLength = 280

var (
	// ErrCaptionEmpty reports a caption that is empty after trimming.
	ErrCaptionEmpty = errors.New("text cannot be empty")
	// ErrCaptionTooLong reports a caption over MaxCaptionLength characters.
	ErrCaptionTooLong = errors.New("text is too long")
)

// CaptionLength returns the number of characters in text.
func CaptionLength(text string) int {
	return utf8.RuneCountInString(text)
}

// CaptionOverLimit reports whether text exceeds the post length limit.
func CaptionOverLimit(text string) bool {
	return CaptionLength(text) > MaxCaptionLength
}

// CaptionCounter renders the "n/280" counter shown next to editable captions.
// Over-limit values are suffixed with a marker so they stand out in plain
// terminal output.
func CaptionCounter(text string) string {
	n := CaptionLength(text)
	if n > MaxCaptionLength {
		return fmt.Sprintf("%d/%d (over limit)", n, MaxCaptionLength)
	}
	return fmt.Sprintf("%d/%d", n, MaxCaptionLength)
}

// ValidationError lists every problem found with a piece of text.
type ValidationError struct {
	Problems []error
	Length   int
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if errors.Is(p, ErrCaptionTooLong) {
			msgs = append(msgs, fmt.Sprintf("%s (%d/%d characters)", p.Error(), e.Length, MaxCaptionLength))
			continue
		}
		msgs = append(msgs, p.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual problems to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// ValidateCaption checks text against the empty and length rules. It returns
// nil for valid text and a *ValidationError otherwise.
func ValidateCaption(text string) error {
	var problems []error
	if strings.TrimSpace(text) == "" {
		problems = append(problems, ErrCaptionEmpty)
	}
	n := CaptionLength(text)
	if n > MaxCaptionLength {
		problems = append(problems, ErrCaptionTooLong)
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems, Length: n}
}

// Truncate shortens text to at most maxLength characters followed by "...".
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 100
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + "..."
}

// SingleLine collapses whitespace runs, including newlines, into single spaces.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
